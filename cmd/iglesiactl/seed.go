package main

import (
	"context"
	"fmt"
	"os"

	churchstore "github.com/dalemusser/iglesiahub/internal/app/store/churches"
	familystore "github.com/dalemusser/iglesiahub/internal/app/store/families"
	personstore "github.com/dalemusser/iglesiahub/internal/app/store/persons"
	"github.com/dalemusser/iglesiahub/internal/app/system/seed"
	"github.com/spf13/cobra"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create churches, families and persons from a YAML file",
	Long: `Load a seed file such as:

  churches:
    - name: Iglesia Central
      slug: central
      families:
        - {key: lopez, name: Familia López}
      persons:
        - {first_name: Ana, birth_date: "1990-03-01", family: lopez}

Churches whose slug already exists are skipped.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "Seed YAML file")
	_ = seedCmd.MarkFlagRequired("file")
}

func runSeed(cmd *cobra.Command, args []string) error {
	fh, err := os.Open(seedFile)
	if err != nil {
		return err
	}
	defer fh.Close()

	doc, err := seed.Parse(fh)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	client, db, err := connect(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	loader := &seed.Loader{
		Churches: churchstore.New(db),
		Families: familystore.New(db),
		Persons:  personstore.New(db),
		Log:      logger,
	}
	sum, err := loader.Load(ctx, doc)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created %d churches, %d families, %d persons", sum.Churches, sum.Families, sum.Persons)
	if len(sum.Skipped) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), " (skipped existing: %v)", sum.Skipped)
	}
	fmt.Fprintln(cmd.OutOrStdout())
	return nil
}
