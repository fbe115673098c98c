package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/profile-studio/internal/observability"
	"github.com/jonathan/profile-studio/internal/schemas"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file.json>",
	Short: "Validate a JSON document against the profile schema",
	Long:  "Validates a profile import against the built-in profile schema, or any document against --schema.",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

var validateSchemaFile string

func init() {
	validateCmd.Flags().StringVarP(&validateSchemaFile, "schema", "s", "", "Path to a JSON Schema file (default: profile schema)")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	path := args[0]
	var err error
	if validateSchemaFile != "" {
		schemaPath := schemas.Locate(validateSchemaFile)
		if schemaPath == "" {
			schemaPath = validateSchemaFile
		}
		err = schemas.ValidateFile(schemaPath, path)
	} else {
		var data []byte
		data, err = os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		err = schemas.ValidateProfile(data)
	}
	var verr *schemas.ValidationError
	if verbose && (err == nil || errors.As(err, &verr)) {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintValidationErrors(verr)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s is valid\n", path)
	return nil
}
