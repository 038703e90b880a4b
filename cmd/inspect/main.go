package main

import (
	"chat-rooms/repositories"
	"fmt"
	"log"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/pflag"
)

func main() {
	dbPath := pflag.StringP("db", "d", "./data/badger", "Path to badger DB")
	prefix := pflag.StringP("prefix", "p", "", "Key prefix to scan (user:, room:, member:, msg:)")
	limit := pflag.IntP("limit", "n", 0, "Maximum rows, 0 for all")
	pflag.Parse()

	// BypassLockGuard allows reading while the server holds the lock
	db, err := badger.Open(badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Kind", "Detail"})
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

	rows := 0
	errLimit := fmt.Errorf("limit reached")
	err = repositories.Inspect(db, *prefix, func(row repositories.Row) error {
		if *limit > 0 && rows >= *limit {
			return errLimit
		}
		table.Append([]string{row.Key, row.Kind, row.Detail})
		rows++
		return nil
	})
	if err != nil && err != errLimit {
		log.Fatal(err)
	}

	table.Render()
	fmt.Printf("%d rows\n", rows)
}
