// Package wizards implements the interactive ingestion menu: a mode
// selector followed by a short form collecting the source and target.
package wizards

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vvka-141/pgingest/internal/tui/components"
)

// Action is the operation picked from the main menu.
type Action int

const (
	// ActionQuit exits the menu loop.
	ActionQuit Action = iota
	// ActionIngestFile loads a single CSV file.
	ActionIngestFile
	// ActionIngestDirectory loads every CSV file in a directory.
	ActionIngestDirectory
)

// Choice is the outcome of one wizard round.
type Choice struct {
	Action      Action
	Path        string
	Schema      string
	Table       string // single-file mode; empty means derive from the file name
	TablePrefix string // directory mode
}

// Defaults pre-fills the wizard form fields.
type Defaults struct {
	Schema      string
	TablePrefix string
}

// Run presents the menu and, for ingest actions, the matching form.
// Cancelling at any point returns a Choice with ActionQuit.
func Run(defaults Defaults) (Choice, error) {
	action, err := runMenu()
	if err != nil || action == ActionQuit {
		return Choice{Action: ActionQuit}, err
	}

	switch action {
	case ActionIngestFile:
		return runFileForm(defaults)
	default:
		return runDirectoryForm(defaults)
	}
}

func runMenu() (Action, error) {
	selector := components.NewSelector("What would you like to load?", []components.Option{
		{Label: "Single CSV file", Description: "Load one file into one table"},
		{Label: "Directory of CSV files", Description: "Load every CSV file, one table each"},
		{Label: "Exit", Description: "Leave the menu"},
	})

	model, err := tea.NewProgram(selector).Run()
	if err != nil {
		return ActionQuit, err
	}

	result := model.(components.Selector)
	if result.Cancelled() || !result.Submitted() {
		return ActionQuit, nil
	}

	switch result.Selected() {
	case 0:
		return ActionIngestFile, nil
	case 1:
		return ActionIngestDirectory, nil
	default:
		return ActionQuit, nil
	}
}

func runFileForm(defaults Defaults) (Choice, error) {
	form := components.NewForm("Load a CSV file",
		components.NewTextField("CSV file", "path/to/data.csv").
			WithRequired(true).
			WithPathCompletion(false),
		components.NewTextField("Schema", "").
			WithValue(defaults.Schema),
		components.NewTextField("Table", "defaults to the file name"),
	)

	model, err := tea.NewProgram(form).Run()
	if err != nil {
		return Choice{Action: ActionQuit}, err
	}

	result := model.(components.Form)
	if result.Cancelled() || !result.Submitted() {
		return Choice{Action: ActionQuit}, nil
	}

	return Choice{
		Action: ActionIngestFile,
		Path:   result.FieldValue(0),
		Schema: result.FieldValue(1),
		Table:  result.FieldValue(2),
	}, nil
}

func runDirectoryForm(defaults Defaults) (Choice, error) {
	form := components.NewForm("Load a directory of CSV files",
		components.NewTextField("Directory", "path/to/csv/dir").
			WithRequired(true).
			WithPathCompletion(true),
		components.NewTextField("Schema", "").
			WithValue(defaults.Schema),
		components.NewTextField("Table prefix", "empty for bare file names").
			WithValue(defaults.TablePrefix),
	)

	model, err := tea.NewProgram(form).Run()
	if err != nil {
		return Choice{Action: ActionQuit}, err
	}

	result := model.(components.Form)
	if result.Cancelled() || !result.Submitted() {
		return Choice{Action: ActionQuit}, nil
	}

	return Choice{
		Action:      ActionIngestDirectory,
		Path:        result.FieldValue(0),
		Schema:      result.FieldValue(1),
		TablePrefix: result.FieldValue(2),
	}, nil
}
