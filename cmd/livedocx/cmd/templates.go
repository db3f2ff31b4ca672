package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/zeptools/gw-livedocx/apis/livedocx"
	"github.com/zeptools/gw-livedocx/archive"
)

var (
	templatesJSON  bool
	templatesOut   string
	templatesForce bool
	historyLimit   int
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Manage templates stored on the service",
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored templates",
	Args:  cobra.NoArgs,
	RunE:  runTemplatesList,
}

var templatesExistsCmd = &cobra.Command{
	Use:   "exists <name>",
	Short: "Tell whether a template is stored",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplatesExists,
}

var templatesUploadCmd = &cobra.Command{
	Use:   "upload <local-file> [remote-name]",
	Short: "Upload a template",
	Long: `Uploads a DOC, DOCX, RTF or TXD file. The remote name defaults to the
base name of the local file; both extensions must match exactly.

Examples:
  livedocx templates upload ./letter.docx
  livedocx templates upload ./v2/letter.docx letter.docx`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runTemplatesUpload,
}

var templatesDownloadCmd = &cobra.Command{
	Use:   "download <name>",
	Short: "Download a stored template",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplatesDownload,
}

var templatesDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a stored template",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplatesDelete,
}

var templatesHistoryCmd = &cobra.Command{
	Use:   "history <name>",
	Short: "Show recorded events of a template (requires .sql-databases.json)",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplatesHistory,
}

func init() {
	rootCmd.AddCommand(templatesCmd)
	templatesCmd.AddCommand(templatesListCmd, templatesExistsCmd, templatesUploadCmd,
		templatesDownloadCmd, templatesDeleteCmd, templatesHistoryCmd)

	templatesListCmd.Flags().BoolVar(&templatesJSON, "json", false, "print JSON instead of a table")
	templatesDownloadCmd.Flags().StringVarP(&templatesOut, "out", "o", "", "output file (default: the template name)")
	templatesDownloadCmd.Flags().BoolVar(&templatesForce, "force", false, "overwrite an existing output file")
	templatesHistoryCmd.Flags().IntVar(&historyLimit, "limit", 20, "max events")
}

func runTemplatesList(cmd *cobra.Command, args []string) error {
	var templates []livedocx.TemplateInfo
	err := withSession(func(ctx context.Context, c *livedocx.Client) error {
		var err error
		templates, err = c.ListTemplates(ctx)
		return err
	})
	if err != nil {
		return err
	}
	if templatesJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(templates)
	}
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"Name", "Size", "Created", "Modified"})
	for _, tpl := range templates {
		t.AppendRow(table.Row{tpl.Name, tpl.Size, tpl.CreatedAt, tpl.ModifiedAt})
	}
	t.SetStyle(table.StyleLight)
	t.Render()
	return nil
}

func runTemplatesExists(cmd *cobra.Command, args []string) error {
	var exists bool
	err := withSession(func(ctx context.Context, c *livedocx.Client) error {
		var err error
		exists, err = c.TemplateExists(ctx, args[0])
		return err
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), exists)
	return nil
}

func runTemplatesUpload(cmd *cobra.Command, args []string) error {
	localPath := args[0]
	remoteName := filepath.Base(localPath)
	if len(args) == 2 {
		remoteName = args[1]
	}
	if err := core.PrepareOptionalDatabases(); err != nil {
		return err
	}
	err := withSession(func(ctx context.Context, c *livedocx.Client) error {
		return c.UploadTemplate(ctx, localPath, remoteName)
	})
	if err != nil {
		return err
	}
	if data, readErr := os.ReadFile(localPath); readErr == nil {
		recordEvent(archive.NewEvent(remoteName, archive.ActionUpload, data))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "uploaded %s as %s\n", localPath, remoteName)
	return nil
}

func runTemplatesDownload(cmd *cobra.Command, args []string) error {
	name := args[0]
	out := templatesOut
	if out == "" {
		out = filepath.Base(name)
	}
	if err := core.PrepareOptionalDatabases(); err != nil {
		return err
	}
	var data []byte
	err := withSession(func(ctx context.Context, c *livedocx.Client) error {
		var err error
		data, err = c.DownloadTemplate(ctx, name)
		return err
	})
	if err != nil {
		return err
	}
	if err = writeOutput(out, data, templatesForce); err != nil {
		return err
	}
	recordEvent(archive.NewEvent(name, archive.ActionDownload, data))
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", out, len(data))
	return nil
}

func runTemplatesDelete(cmd *cobra.Command, args []string) error {
	name := args[0]
	if err := core.PrepareOptionalDatabases(); err != nil {
		return err
	}
	err := withSession(func(ctx context.Context, c *livedocx.Client) error {
		return c.DeleteTemplate(ctx, name)
	})
	if err != nil {
		return err
	}
	recordEvent(archive.NewEvent(name, archive.ActionDelete, nil))
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", name)
	return nil
}

func runTemplatesHistory(cmd *cobra.Command, args []string) error {
	if err := core.PrepareSQLDatabases(); err != nil {
		return err
	}
	if core.TemplateLedger == nil {
		return errors.New("no template ledger configured")
	}
	events, err := core.TemplateLedger.History(core.RootCtx, args[0], historyLimit)
	if err != nil {
		return err
	}
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"At", "Action", "Size", "SHA256"})
	for _, e := range events {
		t.AppendRow(table.Row{e.At.Local().Format("2006-01-02 15:04:05"), e.Action, e.Size, e.SHA256})
	}
	t.SetStyle(table.StyleLight)
	t.Render()
	return nil
}
