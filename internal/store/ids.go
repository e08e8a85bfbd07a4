package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
)

// maxIDAttempts bounds how many drawn ids a create skips because a
// caller-supplied id already took them.
const maxIDAttempts = 5

// idSequence backs one human-readable ID family (PREFIX-###) with a
// database sequence so concurrent creators never collide.
type idSequence struct {
	prefix   string
	sequence string
	table    string
}

var (
	zoneIDs     = idSequence{prefix: "ZONE", sequence: "zone_id_seq", table: "warehouse_zones"}
	auditIDs    = idSequence{prefix: "AUD", sequence: "audit_id_seq", table: "inventory_audits"}
	incomingIDs = idSequence{prefix: "INC", sequence: "incoming_id_seq", table: "incoming_shipments"}
	outgoingIDs = idSequence{prefix: "OUT", sequence: "outgoing_id_seq", table: "outgoing_shipments"}
	orderIDs    = idSequence{prefix: "ORD", sequence: "order_id_seq", table: "orders"}
	reportIDs   = idSequence{prefix: "REP", sequence: "report_id_seq", table: "generated_reports"}
)

var idSequences = []idSequence{zoneIDs, auditIDs, incomingIDs, outgoingIDs, orderIDs, reportIDs}

// FormatID renders a sequence value in the PREFIX-### display format.
// Values past 999 keep all their digits.
func FormatID(prefix string, n int64) string {
	return fmt.Sprintf("%s-%03d", prefix, n)
}

func nextID(ctx context.Context, q sqlx.QueryerContext, seq idSequence) (string, error) {
	var n int64
	if err := sqlx.GetContext(ctx, q, &n, "SELECT nextval($1::regclass)", seq.sequence); err != nil {
		return "", fmt.Errorf("failed to allocate %s id: %w", seq.prefix, err)
	}
	return FormatID(seq.prefix, n), nil
}

// initSequence creates the sequence and moves it past the largest numeric
// suffix already stored under its prefix, so rows written before the
// sequence existed are never reissued.
func initSequence(ctx context.Context, tx *sqlx.Tx, seq idSequence) error {
	create := fmt.Sprintf("CREATE SEQUENCE IF NOT EXISTS %s", seq.sequence)
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("failed to create sequence %s: %w", seq.sequence, err)
	}

	advance := fmt.Sprintf(`
		SELECT setval('%[1]s', m) FROM (
			SELECT MAX(CAST(SUBSTRING(id FROM '^%[2]s-([0-9]+)$') AS BIGINT)) AS m FROM %[3]s
		) t
		WHERE m IS NOT NULL
		  AND m > (SELECT CASE WHEN is_called THEN last_value ELSE 0 END FROM %[1]s)`,
		seq.sequence, seq.prefix, seq.table)
	if _, err := tx.ExecContext(ctx, advance); err != nil {
		return fmt.Errorf("failed to advance sequence %s: %w", seq.sequence, err)
	}
	return nil
}

// parseID returns the numeric suffix of id when it belongs to the
// PREFIX-### family of prefix.
func parseID(prefix, id string) (int64, bool) {
	digits, ok := strings.CutPrefix(id, prefix+"-")
	if !ok || digits == "" {
		return 0, false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// reserveID moves seq past a caller-supplied id of its family so the
// sequence never hands it out again. Ids outside the family are ignored.
func reserveID(ctx context.Context, q sqlx.ExecerContext, seq idSequence, id string) error {
	n, ok := parseID(seq.prefix, id)
	if !ok {
		return nil
	}

	advance := fmt.Sprintf(`
		SELECT setval('%[1]s', $1::bigint) FROM %[1]s
		WHERE $1::bigint > CASE WHEN is_called THEN last_value ELSE 0 END`, seq.sequence)
	if _, err := q.ExecContext(ctx, advance, n); err != nil {
		return fmt.Errorf("failed to reserve %s: %w", id, err)
	}
	return nil
}

// insertWithID runs insert with the caller's id, or with an id drawn from
// seq when id is empty. A drawn id already present in the table is skipped
// and the next one tried. insert must return the raw driver error.
func (s *Store) insertWithID(ctx context.Context, seq idSequence, id string, insert func(id string) error) error {
	if id != "" {
		if err := reserveID(ctx, s.db, seq, id); err != nil {
			return err
		}
		return mapError(insert(id))
	}

	for attempt := 1; ; attempt++ {
		drawn, err := nextID(ctx, s.db, seq)
		if err != nil {
			return err
		}
		err = insert(drawn)
		if attempt == maxIDAttempts || !isPrimaryKeyConflict(err, seq.table) {
			return mapError(err)
		}
	}
}
