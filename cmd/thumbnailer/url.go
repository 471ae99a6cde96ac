package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/giobyte8/thumbvariants/internal/fields"
	"github.com/giobyte8/thumbvariants/internal/urls"
)

var urlCmd = &cobra.Command{
	Use:   "url <app.model> <field> <file> <thumb>",
	Short: "Print the URL of one thumbnail of a stored original",
	Args:  cobra.ExactArgs(4),
	RunE:  runURL,
}

func init() {
	urlCmd.Flags().Bool("ssl", false, "rewrite http:// URLs to https://")
	urlCmd.Flags().Bool("no-cache", false, "bypass the URL cache")
	urlCmd.Flags().Bool("no-cache-bust", false, "omit the cache buster parameter")
}

func runURL(cmd *cobra.Command, args []string) error {
	model, fieldName, file, thumb := args[0], args[1], args[2], args[3]
	ssl, _ := cmd.Flags().GetBool("ssl")
	noCache, _ := cmd.Flags().GetBool("no-cache")
	noBust, _ := cmd.Flags().GetBool("no-cache-bust")

	ctx := cmd.Context()
	d, err := prepareDeps(ctx)
	if err != nil {
		return err
	}
	defer d.shutdown(ctx)

	fieldCfg, err := d.registry.Field(model, fieldName)
	if err != nil {
		return err
	}
	if _, ok := fieldCfg.Spec(thumb); !ok {
		return fmt.Errorf("field %s.%s has no thumbnail named %s", model, fieldName, thumb)
	}

	c, closeCache, err := prepareCache(ctx, d.settings)
	if err != nil {
		return err
	}
	defer closeCache()

	field := &fields.Field{
		Config:    fieldCfg,
		Storage:   d.storage,
		Generator: d.generator,
		URLs: urls.NewResolver(
			c,
			urls.Config{
				CacheTTL:    d.settings.URLCacheTTL,
				CacheBuster: d.settings.CacheBuster,
			},
			d.telemetry,
		),
	}

	opts := urls.Options{SSL: ssl, UseCache: !noCache, CacheBust: !noBust}
	fmt.Println(field.File(file).ThumbnailURL(ctx, thumb, opts))
	return nil
}
