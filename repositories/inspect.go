package repositories

import (
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Row is a human readable view of one stored key.
type Row struct {
	Key    string
	Kind   string
	Detail string
}

// Inspect walks every key under prefix and describes its value. Tokens and
// password hashes are never shown.
func Inspect(db *badger.DB, prefix string, fn func(Row) error) error {
	return db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			item := it.Item()
			key := string(item.KeyCopy(nil))
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if err = fn(describe(key, value)); err != nil {
				return err
			}
		}
		return nil
	})
}

func describe(key string, value []byte) Row {
	row := Row{Key: key}
	switch {
	case strings.HasPrefix(key, "user:id:"):
		var r userRecord
		row.Kind = "user"
		row.Detail = decoded(value, &r, func() string {
			return fmt.Sprintf("%s logged_in=%t", r.Username, r.Token != "")
		})
	case strings.HasPrefix(key, "user:name:"):
		row.Kind = "username"
		row.Detail = "id " + string(value)
	case strings.HasPrefix(key, "room:"):
		var r roomRecord
		row.Kind = "room"
		row.Detail = decoded(value, &r, func() string { return r.Name })
	case strings.HasPrefix(key, "member:"):
		row.Kind = "membership"
	case strings.HasPrefix(key, "msg:"):
		var r messageRecord
		row.Kind = "message"
		row.Detail = decoded(value, &r, func() string {
			at := time.Unix(0, r.At).UTC().Format(time.RFC3339Nano)
			return fmt.Sprintf("%s user %d: %s", at, r.UserID, r.Text)
		})
	case strings.HasPrefix(key, "seq:"):
		row.Kind = "sequence"
	default:
		row.Kind = "unknown"
	}
	return row
}

func decoded(value []byte, record any, render func() string) string {
	if err := unmarshal(value, record); err != nil {
		return "undecodable: " + err.Error()
	}
	return render()
}
