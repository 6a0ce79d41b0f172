package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/uit-hub/academic-ledger/internal/application/command"
	"github.com/uit-hub/academic-ledger/internal/application/query"
)

var importMajor string

// curriculumCmd manages training programs
var curriculumCmd = &cobra.Command{
	Use:   "curriculum",
	Short: "Manage training programs",
}

var curriculumImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Import programs from a YAML seed file",
	Long: `Import one or more programs from a YAML file. Each YAML document is one
program:

  major: Mạng máy tính và Truyền thông dữ liệu
  curriculum:
    - course_code: IT001
      course_name: Nhập môn lập trình
      category: Cơ sở ngành
      credits: 4
      prerequisites: []

All programs are validated before any of them is stored.`,
	Args: cobra.ExactArgs(1),
	RunE: runCurriculumImport,
}

var curriculumShowCmd = &cobra.Command{
	Use:   "show <major>",
	Short: "Show a program grouped by category",
	Args:  cobra.ExactArgs(1),
	RunE:  runCurriculumShow,
}

var curriculumListCmd = &cobra.Command{
	Use:   "list",
	Short: "List majors with a stored program",
	Args:  cobra.NoArgs,
	RunE:  runCurriculumList,
}

func init() {
	curriculumImportCmd.Flags().StringVar(&importMajor, "major", "", "Import only this major")

	curriculumCmd.AddCommand(curriculumImportCmd)
	curriculumCmd.AddCommand(curriculumShowCmd)
	curriculumCmd.AddCommand(curriculumListCmd)
}

func runCurriculumImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()
	if err := a.migrateIfEnabled(); err != nil {
		return err
	}

	res, err := command.NewImportCurriculumHandler(a.programs, a.log).
		Handle(ctx, command.ImportCurriculumCommand{Source: f, Major: importMajor})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, res)
	}
	for _, p := range res.Programs {
		fmt.Fprintf(out, "%s: %d subjects, %d credits\n", p.Major, p.Subjects, p.TotalCredits)
	}
	return nil
}

func runCurriculumShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	dto, err := query.NewGetCurriculumHandler(a.programs).Handle(ctx, query.GetCurriculumQuery{Major: args[0]})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, dto)
	}
	fmt.Fprintf(out, "%s (%d credits)\n\n", dto.Major, dto.TotalCredits)
	for _, g := range dto.Categories {
		printSubjects(out, g.Category, g.Subjects)
	}
	return nil
}

func runCurriculumList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	majors, err := query.NewGetCurriculumHandler(a.programs).ListMajors(ctx)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), majors)
	}
	for _, m := range majors {
		fmt.Fprintln(cmd.OutOrStdout(), m)
	}
	return nil
}
