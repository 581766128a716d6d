package postgres

// SQL queries for provenance storage operations

const (
	// queryInsertBatch persists a batch exactly once.
	// created_at is set by the database; the store owns record
	// creation time. ON CONFLICT DO NOTHING returns no rows
	// (sql.ErrNoRows) for duplicate ids.
	queryInsertBatch = `
		INSERT INTO batches (
			id, producer_id, crop, variety, quantity,
			origin_description, harvest_timestamp
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
		RETURNING created_at
	`

	queryGetBatch = `
		SELECT
			id, producer_id, crop, variety, quantity,
			origin_description, harvest_timestamp, created_at
		FROM batches
		WHERE id = $1
	`

	queryListBatches = `
		SELECT
			id, producer_id, crop, variety, quantity,
			origin_description, harvest_timestamp, created_at
		FROM batches
		WHERE producer_id = $1
		ORDER BY created_at DESC
	`

	// queryInsertEvent appends a sealed event.
	// RETURNING retrieves the auto-generated seq cursor; seq provides
	// the insertion-order tie-break for trace ordering.
	queryInsertEvent = `
		INSERT INTO events (
			id, batch_id, actor_role, actor_name, occurred_at,
			latitude, longitude, payload, content_hash, ledger_ref
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING
		RETURNING seq
	`

	// queryListEvents fetches a batch's full custody chain in trace
	// order: timestamp ascending, ties broken by insertion order.
	queryListEvents = `
		SELECT
			id, batch_id, actor_role, actor_name, occurred_at,
			latitude, longitude, payload, content_hash, ledger_ref, seq
		FROM events
		WHERE batch_id = $1
		ORDER BY occurred_at ASC, seq ASC
	`
)
