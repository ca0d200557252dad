package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/rolodex/internal/events"
	"github.com/alfredjeanlab/rolodex/internal/export"
	"github.com/alfredjeanlab/rolodex/internal/idgen"
	"github.com/alfredjeanlab/rolodex/internal/model"
	rolosync "github.com/alfredjeanlab/rolodex/internal/sync"
	"github.com/alfredjeanlab/rolodex/internal/ui"
)

var exportCmd = &cobra.Command{
	Use:     "export <entity>",
	Short:   "Export the filtered list as an XML or CSV file",
	GroupID: "records",
	Args:    cobra.ExactArgs(1),
	Example: `  rx export customers --metadata --company Acme
  rx export employees --name ross --format csv --output -
  rx export suppliers --output /tmp/suppliers.xml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		entity, err := model.ParseEntity(args[0])
		if err != nil {
			return err
		}
		req, err := exportRequestFromFlags(cmd, entity, time.Now())
		if err != nil {
			return err
		}

		records, err := recordsClient.ListRecords(cmd.Context(), entity, filterFlags(cmd))
		if err != nil {
			return fmt.Errorf("listing %s: %w", entity, err)
		}

		a, err := runExport(cmd.Context(), req, records)
		if err != nil {
			publishCLIFailed(cmd.Context(), entity, err)
			return err
		}
		publishCLICompleted(cmd.Context(), entity, a, len(records))

		if req.file != nil {
			fmt.Fprintln(os.Stderr, ui.RenderOK(fmt.Sprintf("Export complete! %d records exported to %s",
				len(records), req.file.Path(a.Name))))
		}
		return nil
	},
}

// exportRequest is the resolved form of the export flags.
type exportRequest struct {
	entity model.Entity
	format string
	opts   export.Options
	dest   export.Deliverer
	// file is the destination when writing to disk, nil for stdout.
	file *rolosync.FileDestination
}

// exportRequestFromFlags resolves format, destination and document options
// from flags, falling back to the config file and the entity defaults.
func exportRequestFromFlags(cmd *cobra.Command, entity model.Entity, at time.Time) (exportRequest, error) {
	f := cmd.Flags()
	settings := loadSettingsOnce().Export

	format, _ := f.GetString("format")
	format = strings.ToLower(format)
	if format != "xml" && format != "csv" {
		return exportRequest{}, fmt.Errorf("unknown format %q (must be xml or csv)", format)
	}

	opts := export.ForEntity(entity, at)
	if format == "csv" {
		opts.Filename = export.DatedFilename(entity.String(), at, "csv")
	}
	opts.IncludeMetadata, _ = f.GetBool("metadata")
	opts.Company = flagOr(cmd, "company", settings.Company)
	opts.ExportedBy = flagOr(cmd, "author", settings.Author)
	opts.Version = flagOr(cmd, "version", settings.Version)
	if v, _ := f.GetString("root"); v != "" {
		opts.RootElement = v
	}
	if v, _ := f.GetString("item"); v != "" {
		opts.ItemElement = v
	}
	for flag, name := range map[string]string{"root": opts.RootElement, "item": opts.ItemElement} {
		if err := export.ValidateName(name); err != nil {
			return exportRequest{}, fmt.Errorf("--%s: %w", flag, err)
		}
	}

	output, _ := f.GetString("output")
	req := exportRequest{entity: entity, format: format, opts: opts}
	switch {
	case output == "-":
		req.dest = rolosync.NewWriterDestination(cmd.OutOrStdout())
	case filepath.Ext(output) != "":
		req.opts.Filename = filepath.Base(output)
		req.file = rolosync.NewFileDestination(filepath.Dir(output))
	default:
		dir := output
		if dir == "" {
			dir = settings.OutputDir
		}
		if dir == "" {
			dir = "."
		}
		req.file = rolosync.NewFileDestination(dir)
	}
	if req.file != nil {
		req.dest = req.file
	}
	return req, nil
}

// runExport builds and delivers the document.
func runExport(ctx context.Context, req exportRequest, records []*model.Record) (export.Artifact, error) {
	exporter := export.NewExporter(req.dest)
	if req.format == "csv" {
		return exporter.ExportCSV(ctx, req.entity, records, req.opts.Filename)
	}
	return exporter.Export(ctx, model.Items(records), req.opts)
}

// flagOr returns the flag value when it was set, otherwise fallback.
func flagOr(cmd *cobra.Command, name, fallback string) string {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetString(name)
		return v
	}
	return fallback
}

// cliPublisher connects to NATS when $ROLODEX_NATS_URL or the config file
// names a server. Publishing from the CLI is best effort.
func cliPublisher() events.Publisher {
	url := os.Getenv("ROLODEX_NATS_URL")
	if url == "" {
		url = loadSettingsOnce().NATSURL
	}
	if url == "" {
		return &events.NoopPublisher{}
	}
	pub, err := events.NewNATSPublisher(url)
	if err != nil {
		warnf("events disabled: %v", err)
		return &events.NoopPublisher{}
	}
	return pub
}

func publishCLICompleted(ctx context.Context, entity model.Entity, a export.Artifact, n int) {
	pub := cliPublisher()
	defer pub.Close()
	_ = pub.Publish(ctx, events.TopicExportCompleted, events.ExportCompleted{
		ID:          idgen.MustExportID(),
		Entity:      entity.String(),
		Filename:    a.Name,
		ContentType: a.ContentType,
		Records:     n,
		Bytes:       len(a.Data),
		Source:      events.SourceCLI,
		At:          time.Now().UTC(),
	})
}

func publishCLIFailed(ctx context.Context, entity model.Entity, cause error) {
	pub := cliPublisher()
	defer pub.Close()
	_ = pub.Publish(ctx, events.TopicExportFailed, events.ExportFailed{
		ID:     idgen.MustExportID(),
		Entity: entity.String(),
		Source: events.SourceCLI,
		Error:  cause.Error(),
		At:     time.Now().UTC(),
	})
}

func addExportFlags(cmd *cobra.Command) {
	addFilterFlags(cmd)
	cmd.Flags().String("format", "xml", "document format (xml or csv)")
	cmd.Flags().StringP("output", "o", "", `output file or directory ("-" for stdout)`)
	cmd.Flags().Bool("metadata", false, "wrap the items in an Export envelope with metadata")
	cmd.Flags().String("company", "", "company written into the metadata")
	cmd.Flags().String("author", "", "exporting user written into the metadata")
	cmd.Flags().String("version", "", "version written into the metadata")
	cmd.Flags().String("root", "", "root element name (default: entity name, e.g. Customers)")
	cmd.Flags().String("item", "", "item element name (default: singular entity, e.g. Customer)")
}

func init() {
	addExportFlags(exportCmd)
}
