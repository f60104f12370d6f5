package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arboric/canopy/internal/schema"
	"arboric/canopy/internal/store"
)

// refsFixture extends the colors tree with content tables and metadata:
// node records (bundle-discriminated) and products reference terms, widgets
// reference terms but have no resolvable entity table.
func refsFixture(t *testing.T, db *store.DB) {
	t.Helper()
	colorsFixture(t, db)

	_, err := db.Conn().Exec(`
		CREATE TABLE node__field_color (entity_id INTEGER, field_color_target_id INTEGER);
		CREATE TABLE product__field_shade (entity_id INTEGER, field_shade_target_id INTEGER);
		CREATE TABLE widget__field_tone (entity_id INTEGER, field_tone_target_id INTEGER);
		CREATE TABLE node_field_data (nid INTEGER PRIMARY KEY, title TEXT, type TEXT);
		CREATE TABLE products (id INTEGER PRIMARY KEY, name TEXT);

		INSERT INTO field_map VALUES
			('node', 'field_color', 'article', 'taxonomy_term', 'node__field_color', 'field_color_target_id', 'colors'),
			('product', 'field_shade', 'default', 'taxonomy_term', 'product__field_shade', 'field_shade_target_id', ''),
			('widget', 'field_tone', 'default', 'taxonomy_term', 'widget__field_tone', 'field_tone_target_id', 'colors');
		INSERT INTO entity_tables VALUES
			('node', 'node_field_data', 'nid', 'title', 'type'),
			('product', 'products', 'id', 'name', '');
	`)
	require.NoError(t, err)
}

func aggregatorOver(db *store.DB) *Aggregator {
	return NewAggregator(db, schema.NewSQLiteRegistry(db))
}

func term(tid int64, vid string) store.Term {
	return store.Term{ID: tid, Vocabulary: vid}
}

func exec(t *testing.T, db *store.DB, stmt string, args ...any) {
	t.Helper()
	_, err := db.Conn().Exec(stmt, args...)
	require.NoError(t, err)
}

func TestCountReferencingRecords_DescendantMatch(t *testing.T) {
	db := setupTestDB(t)
	refsFixture(t, db)
	// Product 7 is tagged scarlet (tid 3), two levels below red (tid 1)
	exec(t, db, `INSERT INTO products VALUES (7, 'Scarlet Socks')`)
	exec(t, db, `INSERT INTO product__field_shade VALUES (7, 3)`)
	agg := aggregatorOver(db)

	n, err := agg.CountReferencingRecords(term(1, "colors"), false)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = agg.CountReferencingRecords(term(1, "colors"), true)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// scarlet has no descendants
	n, err = agg.CountReferencingRecords(term(3, "colors"), true)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = agg.CountReferencingRecords(term(3, "colors"), false)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCountReferencingRecords_DescendantsOnlyExcludesAnchor(t *testing.T) {
	db := setupTestDB(t)
	refsFixture(t, db)
	// Node 5 references red (the anchor) directly
	exec(t, db, `INSERT INTO node_field_data VALUES (5, 'Red article', 'article')`)
	exec(t, db, `INSERT INTO node__field_color VALUES (5, 1)`)
	agg := aggregatorOver(db)

	n, err := agg.CountReferencingRecords(term(1, "colors"), false)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = agg.CountReferencingRecords(term(1, "colors"), true)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "a direct reference to the anchor must not count")
}

func TestCountReferencingRecords_DedupedAcrossTermsAndFields(t *testing.T) {
	db := setupTestDB(t)
	refsFixture(t, db)
	// Node 5 references both red and crimson through the same field
	exec(t, db, `INSERT INTO node_field_data VALUES (5, 'Reds roundup', 'article')`)
	exec(t, db, `INSERT INTO node__field_color VALUES (5, 1), (5, 2)`)
	agg := aggregatorOver(db)

	n, err := agg.CountReferencingRecords(term(1, "colors"), false)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	records, err := agg.ReferencingRecords(term(1, "colors"), false)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "node", records[0].EntityType)
	assert.Equal(t, int64(5), records[0].ID)
}

func TestReferencingRecords_LabelsAndBundles(t *testing.T) {
	db := setupTestDB(t)
	refsFixture(t, db)
	exec(t, db, `INSERT INTO node_field_data VALUES (5, 'Crimson tide', 'article')`)
	exec(t, db, `INSERT INTO node__field_color VALUES (5, 2)`)
	exec(t, db, `INSERT INTO products VALUES (7, 'Scarlet Socks')`)
	exec(t, db, `INSERT INTO product__field_shade VALUES (7, 3)`)
	agg := aggregatorOver(db)

	records, err := agg.ReferencingRecords(term(1, "colors"), false)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Ordered by entity type, then id
	require.Equal(t, "node", records[0].EntityType)
	require.NotNil(t, records[0].Label)
	assert.Equal(t, "Crimson tide", *records[0].Label)
	assert.Equal(t, "article", records[0].Bundle)

	require.Equal(t, "product", records[1].EntityType)
	require.NotNil(t, records[1].Label)
	assert.Equal(t, "Scarlet Socks", *records[1].Label)
	assert.Equal(t, "", records[1].Bundle, "products expose no bundle column")
}

func TestReferencingRecords_UnresolvableTypeKeepsRow(t *testing.T) {
	db := setupTestDB(t)
	refsFixture(t, db)
	// widget has no entity_tables row
	exec(t, db, `INSERT INTO widget__field_tone VALUES (9, 3)`)
	agg := aggregatorOver(db)

	records, err := agg.ReferencingRecords(term(1, "colors"), false)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "widget", records[0].EntityType)
	assert.Equal(t, int64(9), records[0].ID)
	assert.Nil(t, records[0].Label)
	assert.Equal(t, "", records[0].Bundle)
}

func TestReferencingRecords_NoFieldsShortCircuits(t *testing.T) {
	// No field_map rows and no content tables at all: if a query were
	// issued it would fail, so a zero result proves the short-circuit.
	db := setupTestDB(t)
	colorsFixture(t, db)
	agg := aggregatorOver(db)

	n, err := agg.CountReferencingRecords(term(1, "colors"), false)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	records, err := agg.ReferencingRecords(term(1, "colors"), false)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestReferencingRecords_AllowListScopesFields(t *testing.T) {
	db := setupTestDB(t)
	refsFixture(t, db)
	insertTerm(t, db, 20, "sizes", "large", 0)
	// Node field is scoped to colors; only the product field (no
	// allow-list) can reference sizes terms.
	exec(t, db, `INSERT INTO node_field_data VALUES (5, 'Big', 'article')`)
	exec(t, db, `INSERT INTO node__field_color VALUES (5, 20)`)
	exec(t, db, `INSERT INTO products VALUES (8, 'Large Hat')`)
	exec(t, db, `INSERT INTO product__field_shade VALUES (8, 20)`)
	agg := aggregatorOver(db)

	records, err := agg.ReferencingRecords(term(20, "sizes"), false)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "product", records[0].EntityType)
}
