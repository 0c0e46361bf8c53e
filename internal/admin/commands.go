package admin

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gentlepol/internal/common"
	"github.com/dmitrijs2005/gentlepol/internal/server/config"
	"github.com/dmitrijs2005/gentlepol/internal/server/models"
	"github.com/dmitrijs2005/gentlepol/internal/server/services"
	"github.com/urfave/cli/v2"
	"golang.org/x/crypto/bcrypt"
)

func (t *Toolkit) migrateCmd() *cli.Command {
	return &cli.Command{
		Name:        "migrate",
		Usage:       "Run database migrations",
		Description: `Applies every pending migration embedded in the binary.`,
		Action: func(c *cli.Context) error {
			return t.withDB(c, func(db *sql.DB) error {
				if err := t.repomanager.RunMigrations(c.Context, db); err != nil {
					return fmt.Errorf("migration error: %w", err)
				}
				fmt.Fprintln(t.out, "migrations applied")
				return nil
			})
		},
	}
}

func (t *Toolkit) userAddCmd() *cli.Command {
	return &cli.Command{
		Name:  "useradd",
		Usage: "Create a user",
		Description: `Creates a user with a bcrypt-hashed password. Without --password the
		password is read from the terminal.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "username",
				Aliases:  []string{"u"},
				Usage:    "user name",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "password",
				Aliases: []string{"p"},
				Usage:   "password (prompted when empty)",
				EnvVars: []string{"GENTLEPOL_PASSWORD"},
			},
			&cli.IntFlag{
				Name:  "bcrypt-cost",
				Usage: "bcrypt work factor",
				Value: bcrypt.DefaultCost,
			},
		},
		Action: func(c *cli.Context) error {
			password := c.String("password")
			if password == "" {
				var err error
				if password, err = t.readPassword("Password: "); err != nil {
					return fmt.Errorf("read password: %w", err)
				}
			}
			if password == "" {
				return errors.New("empty password")
			}

			return t.withDB(c, func(db *sql.DB) error {
				cfg := &config.Config{BcryptCost: c.Int("bcrypt-cost")}
				auth := services.NewAuthService(db, t.repomanager, cfg, t.logger)
				if err := auth.Register(c.Context, c.String("username"), password); err != nil {
					return err
				}
				fmt.Fprintf(t.out, "user %q created\n", c.String("username"))
				return nil
			})
		},
	}
}

func (t *Toolkit) importFeedsCmd() *cli.Command {
	return &cli.Command{
		Name:  "import-feeds",
		Usage: "Import feed definitions from a JSON file",
		Description: `Reads a JSON array of {url, name, selectors} objects and stores them
		for the given owner. Either every feed is imported or none is.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "owner",
				Aliases:  []string{"o"},
				Usage:    "owning user name",
				Required: true,
			},
			&cli.PathFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "JSON file with feed definitions",
				Required: true,
			},
		},
		Action: func(c *cli.Context) error {
			data, err := os.ReadFile(c.Path("file"))
			if err != nil {
				return err
			}
			var feeds []*models.Feed
			if err := json.Unmarshal(data, &feeds); err != nil {
				return fmt.Errorf("parse %s: %w", c.Path("file"), err)
			}

			return t.withDB(c, func(db *sql.DB) error {
				owner, err := t.repomanager.Users(db).GetCredentialByName(c.Context, c.String("owner"))
				if err != nil {
					if errors.Is(err, common.ErrorNotFound) {
						return fmt.Errorf("%w: %s", common.ErrNoSuchUser, c.String("owner"))
					}
					return err
				}

				fs := services.NewFeedService(db, t.repomanager, t.logger)
				if err := fs.ImportFeeds(c.Context, owner.ID, feeds); err != nil {
					return err
				}
				fmt.Fprintf(t.out, "%d feeds imported for %q\n", len(feeds), c.String("owner"))
				return nil
			})
		},
	}
}

func (t *Toolkit) purgeSessionsCmd() *cli.Command {
	return &cli.Command{
		Name:        "purge-sessions",
		Usage:       "Delete expired sessions",
		Description: `Removes every session whose validity has ended.`,
		Action: func(c *cli.Context) error {
			return t.withDB(c, func(db *sql.DB) error {
				auth := services.NewAuthService(db, t.repomanager, &config.Config{BcryptCost: bcrypt.MinCost}, t.logger)
				n, err := auth.PurgeExpiredSessions(c.Context)
				if err != nil {
					return err
				}
				fmt.Fprintf(t.out, "%d sessions purged\n", n)
				return nil
			})
		},
	}
}
