package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Tomlord1122/taskhub/internal/domain"
	"github.com/Tomlord1122/taskhub/internal/repository"
	"github.com/Tomlord1122/taskhub/internal/service"
)

const superuserPasswordEnv = "TASKHUB_SUPERUSER_PASSWORD"

func newCreateSuperuserCmd(configPath *string) *cobra.Command {
	var req service.SuperuserRequest

	cmd := &cobra.Command{
		Use:   "createsuperuser",
		Short: "Create a staff account with full privileges",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if req.Password == "" {
				req.Password = os.Getenv(superuserPasswordEnv)
			}
			if req.Password == "" {
				return errors.New("a password is required: pass --password or set " + superuserPasswordEnv)
			}

			a, err := bootstrap(cmd.Context(), *configPath, true)
			if err != nil {
				return err
			}
			defer a.close()

			// CreateSuperuser never issues tokens.
			users := service.NewUserService(repository.NewGormUserRepository(a.db.GetDB()), nil, a.logger)
			user, err := users.CreateSuperuser(cmd.Context(), req)
			if err != nil {
				return err
			}

			a.logger.Info("superuser created",
				zap.Uint("user_id", user.ID),
				zap.String("email", user.Email),
				zap.String("name", user.FullName()))
			fmt.Fprintln(cmd.OutOrStdout(), superuserCreated(user))
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Email, "email", "", "email address used to log in")
	cmd.Flags().StringVar(&req.Password, "password", "", "password (defaults to $"+superuserPasswordEnv+")")
	cmd.Flags().StringVar(&req.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&req.LastName, "last-name", "", "last name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func superuserCreated(user *domain.User) string {
	if name := user.FullName(); name != "" {
		return fmt.Sprintf("Superuser %s <%s> created.", name, user.Email)
	}
	return fmt.Sprintf("Superuser %s created.", user.Email)
}
