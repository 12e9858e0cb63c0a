package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/mama165/sdk-go/database"
	"github.com/olekukonko/tablewriter"
)

// inspect dumps game or message rows from a Badger store as a table.
// Opens the database read-only so it can run next to the server.
func main() {
	dbPath := flag.String("db", database.DefaultPath, "Path to badger DB")
	prefix := flag.String("prefix", "game:", "Prefix to scan (game:, msg:, part:, profile:)")
	noColour := flag.Bool("no-colour", false, "Disable coloured output")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	header := fmt.Sprintf("  ====== scanning %q in %s ======", *prefix, *dbPath)
	if !*noColour {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	fmt.Println(header)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Detail", "At"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			err := item.Value(func(v []byte) error {
				table.Append(describe(string(item.Key()), v))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal("Scan failed: ", err)
	}

	table.Render()
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)
	return badger.Open(opts)
}

// describe renders a row from its raw JSON value. Rows that fail to
// decode are shown raw instead of stopping the scan.
func describe(key string, value []byte) []string {
	var generic map[string]any
	if err := json.Unmarshal(value, &generic); err != nil {
		return []string{key, string(value), ""}
	}

	detail := ""
	switch {
	case generic["title"] != nil:
		detail = fmt.Sprintf("%v @ %v", generic["title"], generic["location"])
	case generic["content"] != nil:
		detail = fmt.Sprintf("%v", generic["content"])
	case generic["full_name"] != nil:
		detail = fmt.Sprintf("%v <%v>", generic["full_name"], generic["email"])
	default:
		detail = fmt.Sprintf("%v", generic)
	}

	at := ""
	if raw, ok := generic["created_at"].(float64); ok {
		at = time.Unix(0, int64(raw)).UTC().Format(time.RFC3339)
	}
	return []string{key, detail, at}
}
