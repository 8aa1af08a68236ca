// main.go
/*
fixdecoder — FIX protocol decoder tools
Copyright (C) 2025 Steve Clarke <stephenlclarke@mac.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU Affero General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.

In accordance with section 13 of the AGPL, if you modify this program,
your modified version must prominently offer all users interacting with it
remotely through a computer network an opportunity to receive the source
code of your version.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/stephenlclarke/fixlogreader/dictionary"
	"github.com/stephenlclarke/fixlogreader/fix"
	"github.com/stephenlclarke/fixlogreader/introspect"
	"github.com/stephenlclarke/fixlogreader/scan"
	sqlhost "github.com/stephenlclarke/fixlogreader/sql"
)

// defaultSensitiveFields lists the field names redacted by -obfuscate when
// -sensitive-tags is left empty.
var defaultSensitiveFields = []string{"SenderCompID", "TargetCompID", "PartyID"}

// Version, Branch, GitUrl, Sha are injected at build time via -ldflags
var (
	Version = "0.0.0"
	Branch  = "main"
	GitUrl  = "git@bitbucket.org:edgewater/fixlogreader.git"
	Sha     = "0000000"
)

// CLIOptions holds all parsed flag values.
type CLIOptions struct {
	DictionaryPath string
	OverlayPath    string
	Delimiter      string
	RTags          string
	TagIDs         string
	Verbose        bool
	Fields         bool
	MessageFields  bool
	Groups         bool
	Obfuscate      bool
	SensitiveTags  string
	Paths          []string
}

func parseFlagsArgs(args []string) CLIOptions {
	fs := flag.NewFlagSet("fixscan", flag.ContinueOnError)

	dictPath := fs.String("dictionary", "", "Path to a FIX XML dictionary (default: embedded FIX 4.4)")
	overlayPath := fs.String("overlay", "", "Path to an overlay FIX XML dictionary applied on top of the base dictionary")
	delimiter := fs.String("delimiter", "", `Field delimiter: single character, or \x01 for SOH (default: |)`)
	rtags := fs.String("rtags", "", "Comma-separated field names to add as extra columns, resolved against the dictionary")
	tagIDs := fs.String("tagids", "", "Comma-separated tag numbers to add as extra columns")
	verbose := fs.Bool("verbose", false, "Accepted but has no effect: every column is always printed for each row")
	fields := fs.Bool("fields", false, "List every field in the dictionary instead of scanning logs")
	messageFields := fs.Bool("message-fields", false, "List every (message, field) usage pair instead of scanning logs")
	groups := fs.Bool("groups", false, "List the repeating-group catalog instead of scanning logs")
	obfuscate := fs.Bool("obfuscate", false, "Redact sensitive field values in raw_message with stable per-value aliases")
	sensitiveTags := fs.String("sensitive-tags", "", "Comma-separated field names to redact when -obfuscate is set (default: SenderCompID,TargetCompID,PartyID)")

	fs.Usage = func() {
		PrintUsage()
		fmt.Println("\nFlags:")
		fs.PrintDefaults()
		os.Exit(1)
	}

	fs.Parse(args)

	return CLIOptions{
		DictionaryPath: *dictPath,
		OverlayPath:    *overlayPath,
		Delimiter:      *delimiter,
		RTags:          *rtags,
		TagIDs:         *tagIDs,
		Verbose:        *verbose,
		Fields:         *fields,
		MessageFields:  *messageFields,
		Groups:         *groups,
		Obfuscate:      *obfuscate,
		SensitiveTags:  *sensitiveTags,
		Paths:          fs.Args(),
	}
}

func PrintUsage() {
	fmt.Printf("fixscan %s (branch:%s, commit:%s)\n\n", Version, Branch, Sha)
	fmt.Printf("  git clone %s\n\n", GitUrl)
	fmt.Println("Usage: fixscan [-dictionary=FILE] [-overlay=FILE] [-delimiter=C] [-rtags=NAME,...] [-tagids=N,...] [-obfuscate] [-sensitive-tags=NAME,...] file1.log [file2.log ...]")
	fmt.Println("       fixscan [-dictionary=FILE] -fields")
	fmt.Println("       fixscan [-dictionary=FILE] -message-fields")
	fmt.Println("       fixscan [-dictionary=FILE] -groups")
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseTagIDs(s string) ([]int, error) {
	var out []int
	for _, p := range splitCSV(s) {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid -tagids entry %q: %w", p, err)
		}
		out = append(out, n)
	}
	return out, nil
}

// Process is the entry point: parses flags, binds a scan, runs any
// introspection handler, and otherwise streams rows to out. It returns an
// exit code.
func Process(args []string, out, errOut io.Writer) int {
	opts := parseFlagsArgs(args)

	bindOpts := scan.BindOptions{
		Paths:          opts.Paths,
		DictionaryPath: opts.DictionaryPath,
		OverlayPath:    opts.OverlayPath,
		Delimiter:      opts.Delimiter,
		RTags:          splitCSV(opts.RTags),
	}

	tagIDs, err := parseTagIDs(opts.TagIDs)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	bindOpts.TagIDs = tagIDs

	if opts.Fields || opts.MessageFields || opts.Groups {
		return runIntrospection(opts, bindOpts, out, errOut)
	}

	if len(opts.Paths) == 0 {
		fmt.Fprintln(errOut, "fixscan: no input files given")
		return 1
	}

	bound, err := scan.Bind(context.Background(), scan.OSFileSystem(), bindOpts)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}

	var obfuscator *fix.Obfuscator
	if opts.Obfuscate {
		names := splitCSV(opts.SensitiveTags)
		if len(names) == 0 {
			names = defaultSensitiveFields
		}

		tags, err := sensitiveTagsByName(bound.Dictionary, names)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		obfuscator = fix.CreateObfuscator(tags, true, bound.Delimiter)
	}

	return streamRows(bound, obfuscator, out, errOut)
}

// sensitiveTagsByName resolves field names to tag numbers for -obfuscate,
// the same way -rtags resolves custom columns: unknown names are an error.
func sensitiveTagsByName(dict *dictionary.Dictionary, names []string) (map[int]string, error) {
	tags := make(map[int]string, len(names))
	for _, name := range names {
		f, ok := dict.FieldByName(name)
		if !ok {
			return nil, fmt.Errorf("unknown field name in sensitive-tags: %s", name)
		}
		tags[f.Tag] = f.Name
	}
	return tags, nil
}

// runIntrospection answers -fields/-message-fields/-groups by loading just
// the dictionary (no file globbing, no scan) and printing one of the three
// introspection table functions.
func runIntrospection(opts CLIOptions, bindOpts scan.BindOptions, out, errOut io.Writer) int {
	dict, err := loadDictionaryOnly(opts)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}

	ctx := sqlhost.NewEmptyContext()

	switch {
	case opts.Fields:
		return printTableFunction(&introspect.FieldsTableFunction{Dictionary: dict}, ctx, out, errOut)
	case opts.MessageFields:
		return printTableFunction(&introspect.MessageFieldsTableFunction{Dictionary: dict}, ctx, out, errOut)
	default:
		return printTableFunction(&introspect.GroupsTableFunction{Dictionary: dict}, ctx, out, errOut)
	}
}

func loadDictionaryOnly(opts CLIOptions) (*dictionary.Dictionary, error) {
	var dict *dictionary.Dictionary

	if opts.DictionaryPath == "" {
		d, err := dictionary.Embedded()
		if err != nil {
			return nil, err
		}
		dict = d
	} else {
		f, err := os.Open(opts.DictionaryPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		d, err := dictionary.Load(f)
		if err != nil {
			return nil, err
		}
		dict = d
	}

	if opts.OverlayPath != "" {
		f, err := os.Open(opts.OverlayPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		if err := dict.ApplyOverlay(f); err != nil {
			return nil, err
		}
	}

	return dict, nil
}

// newTabularWriter aligns columns with a tabwriter when out is an
// interactive terminal, and falls back to raw tab-separated output when
// it's piped or redirected. Callers must invoke the returned flush once
// done writing.
func newTabularWriter(out io.Writer) (io.Writer, func()) {
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		return tw, func() { tw.Flush() }
	}
	return out, func() {}
}

func printTableFunction(tf sqlhost.TableFunction, ctx *sqlhost.Context, out, errOut io.Writer) int {
	w, flush := newTabularWriter(out)
	defer flush()

	schema := tf.Schema()

	names := make([]string, len(schema))
	for i, c := range schema {
		names[i] = c.Name
	}
	fmt.Fprintln(w, strings.Join(names, "\t"))

	iter, err := tf.RowIter(ctx)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	defer iter.Close(ctx)

	for {
		row, err := iter.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		fmt.Fprintln(w, formatRow(row))
	}

	return 0
}

func streamRows(bound *scan.BoundScan, obfuscator *fix.Obfuscator, out, errOut io.Writer) int {
	w, flush := newTabularWriter(out)
	defer flush()

	schema := bound.Schema
	names := make([]string, len(schema))
	for i, c := range schema {
		names[i] = c.Name
	}
	fmt.Fprintln(w, strings.Join(names, "\t"))

	ctx := sqlhost.NewEmptyContext()
	iter := bound.NewPartition(nil)
	defer iter.Close(ctx)

	for {
		row, err := iter.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			logrus.WithError(err).Error("fixscan: fatal error reading input")
			fmt.Fprintln(errOut, err)
			return 1
		}
		if obfuscator != nil {
			obfuscateRow(row, obfuscator, errOut)
		}
		fmt.Fprintln(w, formatRow(row))
	}

	return 0
}

// obfuscateRow redacts the raw_message column in place. The fixed columns
// are left alone: they're already split out of the line, so a host that
// wants them hidden projects them away instead of relying on redaction.
func obfuscateRow(row sqlhost.Row, obfuscator *fix.Obfuscator, errOut io.Writer) {
	raw, ok := row[scan.ColRawMessage].(string)
	if !ok {
		return
	}
	row[scan.ColRawMessage] = obfuscator.Enabled(raw, errOut)
}

func formatRow(row sqlhost.Row) string {
	parts := make([]string, len(row))
	for i, v := range row {
		if v == nil {
			parts[i] = ""
			continue
		}
		parts[i] = fmt.Sprintf("%v", v)
	}
	return strings.Join(parts, "\t")
}

func main() {
	os.Exit(Process(os.Args[1:], os.Stdout, os.Stderr))
}
