package store

// SQL query constants organized by entity.
// All SQL lives here — PostgresStore methods reference these constants.

// Listing queries.
const (
	queryUpsertListing = `
		INSERT INTO listings (
			id, category, brand, model, title, item_url,
			price, original_price, source, seller,
			condition, description, images,
			views, watchers, inquiries,
			listed_at, created_at, updated_at
		) VALUES (
			@id, @category, @brand, @model, @title, @item_url,
			@price, @original_price, @source, @seller,
			@condition, @description, @images,
			@views, @watchers, @inquiries,
			@listed_at, now(), now()
		)
		ON CONFLICT (id) DO UPDATE SET
			category = EXCLUDED.category,
			brand = EXCLUDED.brand,
			model = EXCLUDED.model,
			title = EXCLUDED.title,
			item_url = EXCLUDED.item_url,
			price = EXCLUDED.price,
			original_price = EXCLUDED.original_price,
			source = EXCLUDED.source,
			seller = EXCLUDED.seller,
			condition = EXCLUDED.condition,
			description = EXCLUDED.description,
			images = EXCLUDED.images,
			views = EXCLUDED.views,
			watchers = EXCLUDED.watchers,
			inquiries = EXCLUDED.inquiries,
			listed_at = EXCLUDED.listed_at,
			updated_at = now()
		RETURNING created_at, updated_at`

	queryGetListing = `
		SELECT id, category, brand, model, title, item_url,
			price, original_price, source, seller,
			condition, description, images,
			views, watchers, inquiries,
			score, grade, score_breakdown, scored_at,
			listed_at, created_at, updated_at
		FROM listings
		WHERE id = $1`

	queryUpdateScore = `
		UPDATE listings SET
			score = $2,
			grade = $3,
			score_breakdown = $4,
			scored_at = $5,
			updated_at = now()
		WHERE id = $1`

	queryComparablePrices = `
		SELECT price
		FROM listings
		WHERE category = @category
			AND lower(brand) = lower(@brand)
			AND (@model = '' OR lower(model) LIKE '%' || lower(@model) || '%')
			AND listed_at >= @since
			AND price > 0
		ORDER BY listed_at DESC
		LIMIT @limit`

	queryListScorable = `
		SELECT id, category, brand, model, title, item_url,
			price, original_price, source, seller,
			condition, description, images,
			views, watchers, inquiries,
			score, grade, score_breakdown, scored_at,
			listed_at, created_at, updated_at
		FROM listings
		WHERE (@category = '' OR category = @category)
		ORDER BY scored_at ASC NULLS FIRST
		LIMIT @limit`

	queryTopScoredSince = `
		SELECT id, category, brand, model, title, item_url,
			price, original_price, source, seller,
			condition, description, images,
			views, watchers, inquiries,
			score, grade, score_breakdown, scored_at,
			listed_at, created_at, updated_at
		FROM listings
		WHERE category = @category
			AND score IS NOT NULL
			AND scored_at >= @since
		ORDER BY score DESC, listed_at DESC
		LIMIT @limit`
)

// Job run queries.
const (
	queryInsertJobRun = `
		INSERT INTO job_runs (id, job_name, started_at, status)
		VALUES ($1, $2, now(), 'running')
		RETURNING id`

	queryCompleteJobRun = `
		UPDATE job_runs SET
			completed_at = now(),
			status = $2,
			error_text = NULLIF($3, ''),
			rows_affected = $4
		WHERE id = $1`

	queryListLatestJobRuns = `
		SELECT DISTINCT ON (job_name)
			id, job_name, started_at, completed_at, status,
			COALESCE(error_text, ''), rows_affected
		FROM job_runs
		ORDER BY job_name, started_at DESC`
)
