package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"

	_ "github.com/mattn/go-sqlite3"

	"github.com/harrison/dataworks/internal/registry"
)

// goldTicketSales totals units * price over all rows of the requested ticket
// type in ticket-sales.db and writes the number to ticket-sales-gold.txt.
func (d Deps) goldTicketSales(ctx context.Context, args map[string]any) (string, error) {
	const task = "gold_ticket_sales"

	ticketType := stringArg(args, "ticket_type", "Gold")

	dbPath, err := d.resolvePath(task, "ticket-sales.db")
	if err != nil {
		return "", err
	}
	dstPath, err := d.resolvePath(task, "ticket-sales-gold.txt")
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(dbPath); err != nil {
		return "", registry.NewTaskError(task, registry.KindNotFound,
			"ticket-sales.db does not exist", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return "", registry.NewTaskError(task, registry.KindIOFailure,
			"cannot open ticket-sales.db", err)
	}
	defer db.Close()

	// SUM over zero rows is NULL, which means zero sales, not an error.
	var total sql.NullFloat64
	err = db.QueryRowContext(ctx,
		"SELECT SUM(units * price) FROM tickets WHERE type = ?", ticketType).Scan(&total)
	if err != nil {
		return "", registry.NewTaskError(task, registry.KindIOFailure,
			"failed to query ticket sales", err)
	}

	value := 0.0
	if total.Valid {
		value = total.Float64
	}
	out := strconv.FormatFloat(value, 'f', -1, 64)

	if err := writeOutput(task, dstPath, []byte(out)); err != nil {
		return "", err
	}
	return fmt.Sprintf("Total %s ticket sales: %s", ticketType, out), nil
}
