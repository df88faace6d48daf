// Command roles grants or revokes roles for an existing account. It is the
// only way to provision admins.
//
//	roles -user alice -grant admin
//	roles -user alice -revoke student
//	roles -user alice
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/Shivanand-hulikatti/campus-events/internal/config"
	"github.com/Shivanand-hulikatti/campus-events/internal/database"
	"github.com/Shivanand-hulikatti/campus-events/internal/model"
	"github.com/Shivanand-hulikatti/campus-events/internal/repository"
)

func main() {
	username := flag.String("user", "", "username to modify")
	grant := flag.String("grant", "", "role to grant (student, admin, super_admin)")
	revoke := flag.String("revoke", "", "role to revoke")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := run(context.Background(), logger, *username, *grant, *revoke); err != nil {
		fmt.Fprintln(os.Stderr, "roles:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, username, grant, revoke string) error {
	if username == "" {
		return errors.New("-user is required")
	}
	if grant != "" && revoke != "" {
		return errors.New("use either -grant or -revoke, not both")
	}

	cfg, err := config.LoadDatabase()
	if err != nil {
		return err
	}
	pool, err := database.NewPool(ctx, cfg.DSN(), logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	users := repository.NewUserRepository(pool)
	roles := repository.NewRoleRepository(pool)

	u, err := users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("no user named %q", username)
		}
		return err
	}

	switch {
	case grant != "":
		role, err := model.ParseRole(grant)
		if err != nil {
			return err
		}
		if err := roles.Assign(ctx, u.ID, role); err != nil {
			return err
		}
		logger.Info("role granted", "user", username, "role", role)
	case revoke != "":
		role, err := model.ParseRole(revoke)
		if err != nil {
			return err
		}
		if err := roles.Revoke(ctx, u.ID, role); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s does not hold %s", username, role)
			}
			return err
		}
		logger.Info("role revoked", "user", username, "role", role)
	}

	set, err := roles.RolesOf(ctx, u.ID)
	if err != nil {
		return err
	}
	names := make([]string, 0, 3)
	for _, r := range set.Roles() {
		names = append(names, string(r))
	}
	fmt.Printf("%s: %s\n", username, strings.Join(names, ", "))
	return nil
}
