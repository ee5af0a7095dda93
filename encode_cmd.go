package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/morse/morse"
	"github.com/muesli/reflow/wordwrap"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

const chartColumns = 4

var (
	copyToClipboard bool

	encodeCmd = &cobra.Command{
		Use:     "encode [TEXT...]",
		Short:   "Print text as dits and dahs",
		Long:    paragraph(fmt.Sprintf("\n%s text into dot/dash notation without playing it. Letters are separated by spaces and words by a slash.", keyword("Encode"))),
		Example: paragraph("morse encode SOS\necho 'hello world' | morse encode --copy"),
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return forEachInput(cmd, args, func(s string) (string, error) {
				if viper.GetBool("sanitize") {
					s = morse.Sanitize(s)
				}
				symbols, err := morse.Encode(s)
				if err != nil {
					return "", err
				}
				return morse.Notation(symbols), nil
			})
		},
	}

	decodeCmd = &cobra.Command{
		Use:     "decode [NOTATION...]",
		Short:   "Turn dits and dahs back into text",
		Long:    paragraph(fmt.Sprintf("\n%s dot/dash notation. Letters are separated by whitespace and words by a slash.", keyword("Decode"))),
		Example: paragraph("morse decode '... --- ...'\nmorse decode .... .. / - .... . .-. ."),
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return forEachInput(cmd, args, morse.Decode)
		},
	}

	chartCmd = &cobra.Command{
		Use:   "chart",
		Short: "Show the Morse alphabet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := renderChart(chartMarkdown(), isTerminal(os.Stdout), terminalWidth())
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}
)

// forEachInput applies convert to the joined arguments, or to each line of
// stdin when there are none, and prints the results.
func forEachInput(cmd *cobra.Command, args []string, convert func(string) (string, error)) error {
	var inputs []string
	if len(args) > 0 {
		inputs = []string{strings.Join(args, " ")}
	} else {
		lines, err := readLines(cmd.InOrStdin())
		if err != nil {
			return err
		}
		inputs = lines
	}

	width := terminalWidth()
	var results []string
	for _, in := range inputs {
		out, err := convert(in)
		if err != nil {
			return err
		}
		results = append(results, out)
		fmt.Fprintln(cmd.OutOrStdout(), wordwrap.String(out, width))
	}

	if copyToClipboard {
		if err := clipboard.WriteAll(strings.Join(results, "\n")); err != nil {
			return fmt.Errorf("unable to copy to clipboard: %w", err)
		}
		log.Info("Copied to clipboard", "lines", len(results))
	}
	return nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("unable to read from reader: %w", err)
	}
	return lines, nil
}

// chartMarkdown lays the alphabet out as a markdown table.
func chartMarkdown() string {
	cells := lo.Map(morse.Alphabet(), func(r rune, _ int) string {
		code, _ := morse.Code(r)
		return fmt.Sprintf("`%c` | `%s`", r, code)
	})

	var b strings.Builder
	b.WriteString("# Morse alphabet\n\n")
	b.WriteString("|" + strings.Repeat(" Char | Code |", chartColumns) + "\n")
	b.WriteString("|" + strings.Repeat(" --- | --- |", chartColumns) + "\n")
	for _, row := range lo.Chunk(cells, chartColumns) {
		for len(row) < chartColumns {
			row = append(row, " | ")
		}
		b.WriteString("| " + strings.Join(row, " | ") + " |\n")
	}
	b.WriteString("\nA space between words lasts seven units.\n")
	return b.String()
}

func renderChart(md string, tty bool, width int) (string, error) {
	style := styles.AutoStyle
	if !tty {
		style = styles.NoTTYStyle
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("unable to create renderer: %w", err)
	}

	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("unable to render markdown: %w", err)
	}
	return out, nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns the width of stdout, capped at 120.
func terminalWidth() int {
	width := 80
	if isTerminal(os.Stdout) {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
			width = w
		}
	}
	return min(width, 120)
}

func init() {
	encodeCmd.Flags().BoolVarP(&copyToClipboard, "copy", "c", false, "copy the notation to the clipboard")
}
