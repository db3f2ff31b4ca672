package cmd

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/zeptools/gw-livedocx/apis/livedocx"
	"github.com/zeptools/gw-livedocx/archive"
)

// mergeFlags select the template and the values of a merge
type mergeFlags struct {
	template      string
	localTemplate string
	dataFiles     []string
	sets          []string
	ignoreSub     bool
}

func (m *mergeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&m.template, "template", "t", "", "stored template name")
	cmd.Flags().StringVarP(&m.localTemplate, "local-template", "l", "", "local template file, used for this session only")
	cmd.Flags().StringSliceVarP(&m.dataFiles, "data", "d", nil, "merge values from JSON, YAML or TOML files (repeatable)")
	cmd.Flags().StringArrayVar(&m.sets, "set", nil, "merge value key=value (repeatable, wins over --data)")
	cmd.Flags().BoolVar(&m.ignoreSub, "ignore-sub-templates", false, "do not merge sub-templates")
	cmd.MarkFlagsMutuallyExclusive("template", "local-template")
	cmd.MarkFlagsOneRequired("template", "local-template")
}

func (m *mergeFlags) templateName() string {
	if m.localTemplate != "" {
		return m.localTemplate
	}
	return m.template
}

// selectTemplate makes the chosen template active
func (m *mergeFlags) selectTemplate(ctx context.Context, c *livedocx.Client) error {
	if m.ignoreSub {
		if err := c.SetIgnoreSubTemplates(ctx); err != nil {
			return err
		}
	}
	if m.localTemplate != "" {
		return c.SetLocalTemplate(ctx, m.localTemplate)
	}
	return c.SetRemoteTemplate(ctx, m.template)
}

// merge selects the template, stages the values and creates the document
func (m *mergeFlags) merge(ctx context.Context, c *livedocx.Client) error {
	values, err := loadValues(m.dataFiles, m.sets)
	if err != nil {
		return err
	}
	if err = m.selectTemplate(ctx, c); err != nil {
		return err
	}
	if err = c.Assign(values); err != nil {
		return err
	}
	return c.CreateDocument(ctx)
}

var (
	renderMerge   mergeFlags
	renderFormat  string
	renderOut     string
	renderForce   bool
	renderArchive bool
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Merge values into a template and save the document",
	Long: `Merges field and block values into a template and retrieves the result.
Blocks are given as lists of objects in the data files.

Examples:
  livedocx render -t letter.docx -d customer.yaml -f pdf
  livedocx render -l ./invoice.docx -d invoice.json --set number=2024-17 -o invoice.pdf
  livedocx render -t letter.docx -d customer.json --archive`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderMerge.register(renderCmd)
	renderCmd.Flags().StringVarP(&renderFormat, "format", "f", "pdf", "document format "+livedocx.DocumentFormats.String())
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "", "output file (default: template name with the format extension)")
	renderCmd.Flags().BoolVar(&renderForce, "force", false, "overwrite an existing output file")
	renderCmd.Flags().BoolVar(&renderArchive, "archive", false, "store the document in the archive and print its id")
}

func runRender(cmd *cobra.Command, args []string) error {
	if !livedocx.DocumentFormats.Allows(renderFormat) {
		return fmt.Errorf("invalid document format %q. valid formats are: %s", renderFormat, livedocx.DocumentFormats)
	}
	if err := core.PrepareOptionalDatabases(); err != nil {
		return err
	}
	if renderArchive && core.DocumentArchive == nil {
		return errors.New("--archive needs a document archive (.kv-databases.json)")
	}

	var data []byte
	err := withSession(func(ctx context.Context, c *livedocx.Client) error {
		if err := renderMerge.merge(ctx, c); err != nil {
			return err
		}
		var err error
		data, err = c.RetrieveDocument(ctx, renderFormat)
		return err
	})
	if err != nil {
		return err
	}
	if renderMerge.template != "" {
		recordEvent(archive.NewEvent(renderMerge.template, archive.ActionSelect, nil))
	}

	if renderArchive {
		id, err := core.DocumentArchive.Put(core.RootCtx, renderFormat, data)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		if renderOut == "" {
			return nil
		}
	}
	out := renderOut
	if out == "" {
		out = outputName(renderMerge.templateName(), renderFormat)
	}
	if err = writeOutput(out, data, renderForce); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d bytes)\n", out, len(data))
	return nil
}

var (
	pagesMerge  mergeFlags
	pagesFrom   int
	pagesTo     int
	pagesZoom   int
	pagesFormat string
	pagesOutDir string
	pagesForce  bool
)

var bitmapsCmd = &cobra.Command{
	Use:   "bitmaps",
	Short: "Render document pages as images",
	Long: `Merges like render, then saves one image per page as page-<n>.<format>.
--from and --to select a page range and must be given together.`,
	Args: cobra.NoArgs,
	RunE: runBitmaps,
}

var metafilesCmd = &cobra.Command{
	Use:   "metafiles",
	Short: "Render document pages as Windows metafiles",
	Args:  cobra.NoArgs,
	RunE:  runMetafiles,
}

func init() {
	rootCmd.AddCommand(bitmapsCmd, metafilesCmd)
	for _, c := range []*cobra.Command{bitmapsCmd, metafilesCmd} {
		c.Flags().IntVar(&pagesFrom, "from", 0, "first page")
		c.Flags().IntVar(&pagesTo, "to", 0, "last page")
		c.Flags().StringVar(&pagesOutDir, "out-dir", ".", "output directory")
		c.Flags().BoolVar(&pagesForce, "force", false, "overwrite existing files")
	}
	// shared flag variables. only one command runs per process
	pagesMerge.register(bitmapsCmd)
	pagesMerge.register(metafilesCmd)
	bitmapsCmd.Flags().IntVar(&pagesZoom, "zoom", 100, fmt.Sprintf("zoom factor %d-%d", livedocx.MinZoomFactor, livedocx.MaxZoomFactor))
	bitmapsCmd.Flags().StringVar(&pagesFormat, "format", "png", "image format "+livedocx.ImageFormats.String())
}

// pageRange is nil unless --from or --to was given. One without the other fails validation
func pageRange(cmd *cobra.Command) *livedocx.PageRange {
	fromSet, toSet := cmd.Flags().Changed("from"), cmd.Flags().Changed("to")
	if !fromSet && !toSet {
		return nil
	}
	r := &livedocx.PageRange{}
	if fromSet {
		r.From = &pagesFrom
	}
	if toSet {
		r.To = &pagesTo
	}
	return r
}

func runBitmaps(cmd *cobra.Command, args []string) error {
	pages := pageRange(cmd)
	var images []string
	err := withSession(func(ctx context.Context, c *livedocx.Client) error {
		if err := pagesMerge.merge(ctx, c); err != nil {
			return err
		}
		var err error
		images, err = c.GetBitmaps(ctx, pagesZoom, pagesFormat, pages)
		return err
	})
	if err != nil {
		return err
	}
	return writePages(cmd, images, pages, pagesFormat)
}

func runMetafiles(cmd *cobra.Command, args []string) error {
	pages := pageRange(cmd)
	var metafiles []string
	err := withSession(func(ctx context.Context, c *livedocx.Client) error {
		if err := pagesMerge.merge(ctx, c); err != nil {
			return err
		}
		var err error
		metafiles, err = c.GetMetafiles(ctx, pages)
		return err
	})
	if err != nil {
		return err
	}
	return writePages(cmd, metafiles, pages, "wmf")
}

// writePages decodes base64 page payloads into page-<n>.<ext>, numbered from the first requested page
func writePages(cmd *cobra.Command, payloads []string, pages *livedocx.PageRange, ext string) error {
	first := 1
	if pages != nil && pages.From != nil {
		first = *pages.From
	}
	for i, payload := range payloads {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return fmt.Errorf("page %d: %w", first+i, err)
		}
		out := filepath.Join(pagesOutDir, fmt.Sprintf("page-%d.%s", first+i, ext))
		if err = writeOutput(out, data, pagesForce); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
	}
	return nil
}

var namesMerge mergeFlags

var namesCmd = &cobra.Command{
	Use:   "names",
	Short: "List field, block or font names",
}

var namesFieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List the merge fields of a template",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printTemplateNames(cmd, (*livedocx.Client).GetFieldNames)
	},
}

var namesBlocksCmd = &cobra.Command{
	Use:   "blocks",
	Short: "List the merge blocks of a template",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printTemplateNames(cmd, (*livedocx.Client).GetBlockNames)
	},
}

var namesFontsCmd = &cobra.Command{
	Use:   "fonts",
	Short: "List the fonts installed on the service",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var fonts []string
		err := withSession(func(ctx context.Context, c *livedocx.Client) error {
			var err error
			fonts, err = c.GetFontNames(ctx)
			return err
		})
		if err != nil {
			return err
		}
		printLines(cmd, fonts)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(namesCmd)
	namesCmd.AddCommand(namesFieldsCmd, namesBlocksCmd, namesFontsCmd)
	for _, c := range []*cobra.Command{namesFieldsCmd, namesBlocksCmd} {
		c.Flags().StringVarP(&namesMerge.template, "template", "t", "", "stored template name")
		c.Flags().StringVarP(&namesMerge.localTemplate, "local-template", "l", "", "local template file")
		c.MarkFlagsMutuallyExclusive("template", "local-template")
		c.MarkFlagsOneRequired("template", "local-template")
	}
}

func printTemplateNames(cmd *cobra.Command, query func(*livedocx.Client, context.Context) ([]string, error)) error {
	var names []string
	err := withSession(func(ctx context.Context, c *livedocx.Client) error {
		if err := namesMerge.selectTemplate(ctx, c); err != nil {
			return err
		}
		var err error
		names, err = query(c, ctx)
		return err
	})
	if err != nil {
		return err
	}
	printLines(cmd, names)
	return nil
}

func printLines(cmd *cobra.Command, lines []string) {
	for _, line := range lines {
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
}
