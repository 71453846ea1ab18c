package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/viralforge/tool-feedback-portal/internal/app/bootstrap"
	"github.com/viralforge/tool-feedback-portal/internal/application"
	"github.com/viralforge/tool-feedback-portal/internal/domain"
)

func withCore(cmd *cobra.Command, configPath string, run func(*bootstrap.Core) error) error {
	core, err := bootstrap.OpenCore(cmd.Context(), configPath)
	if err != nil {
		return err
	}
	defer core.Close()
	return run(core)
}

func groupsCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "Manage permission groups",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "bootstrap",
		Short: "Write the configured permission groups to the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCore(cmd, *configPath, func(core *bootstrap.Core) error {
				groups, err := core.Service.BootstrapGroups(cmd.Context())
				if err != nil {
					return err
				}
				for _, g := range groups {
					fmt.Fprintf(cmd.OutOrStdout(), "group %s: %d resource grants\n", g.Name, len(g.Grants))
				}
				return nil
			})
		},
	})
	return cmd
}

func adminsCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admins",
		Short: "Manage the administrator directory",
	}

	var uid, name string
	var superuser bool
	upsert := &cobra.Command{
		Use:   "upsert [email]",
		Short: "Create or update an administrator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCore(cmd, *configPath, func(core *bootstrap.Core) error {
				admin, err := core.Service.UpsertAdministrator(cmd.Context(), application.UpsertAdministratorRequest{
					UID: uid, Email: args[0], Name: name, Superuser: superuser,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "administrator %d %s (%s, %s)\n", admin.ID, admin.Email, admin.AccessLevel, admin.GroupName)
				return nil
			})
		},
	}
	upsert.Flags().StringVar(&uid, "uid", "", "Identity service uid")
	upsert.Flags().StringVar(&name, "name", "", "Display name")
	upsert.Flags().BoolVar(&superuser, "superuser", false, "Grant superadmin access")

	var removeUID string
	remove := &cobra.Command{
		Use:   "remove [email]",
		Short: "Remove an administrator by email or uid",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := ""
			if len(args) == 1 {
				email = args[0]
			}
			if email == "" && removeUID == "" {
				return errors.New("an email argument or --uid is required")
			}
			return withCore(cmd, *configPath, func(core *bootstrap.Core) error {
				removed, err := core.Service.RemoveAdministrator(cmd.Context(), email, removeUID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %d administrator(s)\n", removed)
				return nil
			})
		},
	}
	remove.Flags().StringVar(&removeUID, "uid", "", "Identity service uid")

	cmd.AddCommand(upsert, remove)
	return cmd
}

func seedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the initial AI model, tool catalog and system administrator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCore(cmd, *configPath, func(core *bootstrap.Core) error {
				res, err := core.Service.Seed(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "catalog rows inserted: %d, system administrator added: %t\n", res.CatalogRows, res.AdministratorAdded)
				return nil
			})
		},
	}
}

func tokenCmd(configPath *string) *cobra.Command {
	var superuser bool
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token [email]",
		Short: "Mint a development principal token (needs JWT_PRIVATE_KEY_PEM)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCore(cmd, *configPath, func(core *bootstrap.Core) error {
				if core.Config.JWTPrivateKeyPEM == "" || core.Signer == nil {
					return errors.New("JWT_PRIVATE_KEY_PEM is required to mint tokens the API can verify")
				}
				raw, err := core.Signer.SignPrincipal(domain.Principal{
					Subject:   "dev-" + args[0],
					Email:     args[0],
					Superuser: superuser,
					SessionID: uuid.NewString(),
					ExpiresAt: time.Now().UTC().Add(ttl),
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), raw)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&superuser, "superuser", false, "Mark the principal as superuser")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	return cmd
}
