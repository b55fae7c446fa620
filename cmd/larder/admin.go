package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/kode4food/larder/internal/account"
	"github.com/kode4food/larder/internal/mail"
	"github.com/kode4food/larder/pkg/api"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.close()
			if err := a.openStore(cmd.Context()); err != nil {
				return err
			}
			slog.Info("Database migrated",
				slog.String("driver", a.store.Driver()))
			return nil
		},
	}
}

func newUserCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}
	cmd.AddCommand(newUserCreateCmd(a))
	return cmd
}

func newUserCreateCmd(a *app) *cobra.Command {
	var nu account.NewUser

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account and print its API token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.close()
			if err := account.CheckNewPassword(
				nu.Password, nu.Password,
			); err != nil {
				return err
			}
			if err := a.openStore(cmd.Context()); err != nil {
				return err
			}

			// account creation issues no one-time tokens
			accounts := account.NewService(
				a.store, nil, mail.NewLogMailer(nil), a.cfg.PublicBaseURL,
			)
			u, err := accounts.CreateUser(cmd.Context(), &nu)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), u.Token)
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&nu.Username, "username", "", "Account username")
	f.StringVar(&nu.Email, "email", "", "Account email address")
	f.StringVar(&nu.Password, "password", "", "Account password")
	f.BoolVar(&nu.IsAdmin, "admin", false, "Grant tag administration")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newTagCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Manage recipe tags",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "create <name>",
		Short: "Create a tag and print its slug",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.close()
			t, err := a.createTag(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), t.Slug)
			return err
		},
	})
	return cmd
}

func (a *app) createTag(ctx context.Context, name string) (*api.Tag, error) {
	req := &api.TagRequest{Name: name}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := a.openStore(ctx); err != nil {
		return nil, err
	}

	t := &api.Tag{Slug: api.Slugify(req.Name), Name: req.Name}
	if err := a.store.CreateTag(ctx, t); err != nil {
		return nil, err
	}
	slog.Info("Tag created",
		slog.String("slug", t.Slug),
		slog.String("name", t.Name))
	return t, nil
}
