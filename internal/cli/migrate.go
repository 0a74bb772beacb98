package cli

import (
	"errors"
	"fmt"

	"github.com/BartekS5/ufmigrate/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func NewMigrateCmd() *cobra.Command {
	v := config.NewViper()

	renames := map[string]string{
		"mongo":    config.KeyMongoConnString,
		"mongo-db": config.KeyMongoDatabase,
	}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run the full migration from the legacy schema",
		PreRunE: func(c *cobra.Command, args []string) error {
			return bindFlags(v, c.Flags(), renames)
		},
		RunE: func(c *cobra.Command, args []string) error {
			cfg, err := config.Load(v, true)
			if err != nil {
				return err
			}
			return runMigration(c.Context(), cfg)
		},
	}

	addConnectionFlags(cmd.Flags())
	cmd.Flags().String("mongo", "", "MongoDB connection string of the destination store")
	cmd.Flags().String("mongo-db", config.DefaultMongoDatabase, "Destination MongoDB database name")
	cmd.Flags().Bool("ignore-records", false, "Do not migrate submitted records")
	cmd.Flags().Bool("ignore-obsolete-properties", false, "Leave page, condition and rule ids empty")
	cmd.Flags().Bool("dry-run", false, "Read and map everything without writing anywhere")

	return cmd
}

func NewRepairCmd() *cobra.Command {
	v := config.NewViper()

	cmd := &cobra.Command{
		Use:   "repair",
		Short: "Only repair record data types and the string value column in the legacy database",
		PreRunE: func(c *cobra.Command, args []string) error {
			return bindFlags(v, c.Flags(), nil)
		},
		RunE: func(c *cobra.Command, args []string) error {
			cfg, err := config.Load(v, false)
			if err != nil {
				return err
			}
			return runRepair(c.Context(), cfg)
		},
	}

	addConnectionFlags(cmd.Flags())
	cmd.Flags().Bool("ignore-records", false, "Skip widening the string value column")
	cmd.Flags().Bool("dry-run", false, "Log the statements instead of executing them")

	return cmd
}

func addConnectionFlags(fs *pflag.FlagSet) {
	fs.String("sql", "", "SQL Server connection string of the legacy database")
	fs.String("log-file", "", "Also write JSON logs to this file")
	fs.Bool("debug", false, "Enable debug output")
}

// bindFlags binds every flag to the viper key of the same name, or to the
// key given in renames.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet, renames map[string]string) error {
	var errs []error
	fs.VisitAll(func(f *pflag.Flag) {
		key := f.Name
		if f.Name == "sql" {
			key = config.KeySQLConnString
		}
		if k, ok := renames[f.Name]; ok {
			key = k
		}
		if err := v.BindPFlag(key, f); err != nil {
			errs = append(errs, fmt.Errorf("failed to bind --%s: %w", f.Name, err))
		}
	})
	return errors.Join(errs...)
}
