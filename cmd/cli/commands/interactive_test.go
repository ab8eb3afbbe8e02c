package commands

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRun struct {
	args       []string
	categories []string
	date       string
}

func testRoot(runs *[]recordedRun) *cobra.Command {
	root := &cobra.Command{Use: "cli"}

	var (
		categories []string
		date       string
	)
	echo := &cobra.Command{
		Use:  "echo <word>",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			*runs = append(*runs, recordedRun{args: args, categories: categories, date: date})
			return nil
		},
	}
	echo.Flags().StringSliceVar(&categories, "category", nil, "")
	echo.Flags().StringVar(&date, "date", "today", "")

	root.AddCommand(echo, &cobra.Command{Use: "watch", Run: func(*cobra.Command, []string) {}})
	root.AddCommand(&cobra.Command{Use: "interactive", Run: func(*cobra.Command, []string) {}})
	return root
}

func TestSessionCommands_ExcludesLongRunning(t *testing.T) {
	var runs []recordedRun
	commands := sessionCommands(testRoot(&runs))

	assert.Contains(t, commands, "echo")
	assert.NotContains(t, commands, "watch")
	assert.NotContains(t, commands, "interactive")
}

func TestRunSession_ResetsFlagsBetweenCommands(t *testing.T) {
	var runs []recordedRun
	commands := sessionCommands(testRoot(&runs))

	input := strings.Join([]string{
		"echo 'one word' --category beach --category teaching --date 2024-05-04",
		"echo two",
		"echo",
		"echo \"unterminated",
		"nope",
		"exit",
		"echo never",
	}, "\n")

	require.NoError(t, runSession(strings.NewReader(input), "> ", commands))

	require.Len(t, runs, 2)
	assert.Equal(t, []string{"one word"}, runs[0].args)
	assert.Equal(t, []string{"beach", "teaching"}, runs[0].categories)
	assert.Equal(t, "2024-05-04", runs[0].date)

	assert.Equal(t, []string{"two"}, runs[1].args)
	assert.Empty(t, runs[1].categories)
	assert.Equal(t, "today", runs[1].date)
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected []string
		wantErr  bool
	}{
		{"plain", "join evt-1", []string{"join", "evt-1"}, false},
		{"extra spaces", "  join \t evt-1  ", []string{"join", "evt-1"}, false},
		{"double quotes", `createEvent --description "Litter pick, north shore"`, []string{"createEvent", "--description", "Litter pick, north shore"}, false},
		{"single quotes keep double", `profile --name 'Ann "Annie" Lee'`, []string{"profile", "--name", `Ann "Annie" Lee`}, false},
		{"quote inside word", `--location=North" Beach"`, []string{"--location=North Beach"}, false},
		{"empty quotes", `profile --contact ""`, []string{"profile", "--contact", ""}, false},
		{"blank line", "   ", nil, false},
		{"unterminated", `events "oops`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, err := splitArgs(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, args)
		})
	}
}
