package ledger_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gstledger/internal/domain"
	"gstledger/internal/ledger"
)

// syncDoc has canonical P1, RC1, MM1, RC2 (ids 0..3); RC view is RC1, RC2.
func syncDoc(e *ledger.Engine) *domain.ProcessedDocument {
	return processed(e,
		igstRow("P1", "27ABCDE1234F1Z5", 1000, 180, "No"),
		igstRow("RC1", "27ABCDE1234F1Z5", 2000, 360, "Yes"),
		igstRow("MM1", "27ABCDE1234F1Z5", 1000, 150, "No"),
		igstRow("RC2", "07ABCDE1234F1Z5", 3000, 540, "Yes"),
	)
}

func edit(serial int, fields domain.LedgerFields) domain.EditRequest {
	return domain.EditRequest{SerialNo: intPtr(serial), LedgerFields: fields}
}

func TestSynchronize_CanonicalEditPropagatesToViews(t *testing.T) {
	e := newEngine()
	doc := syncDoc(e)

	changed, err := e.Synchronize(doc, domain.ViewCanonical, []domain.EditRequest{
		edit(2, domain.LedgerFields{
			LedgerName:   domain.Some("Purchase IGST 18%"),
			AcceptCredit: domain.Some("Yes"),
			Action:       domain.Some(domain.ActionAccept),
			Narration:    domain.Some("checked"),
		}),
	})

	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "Purchase IGST 18%", *doc.Canonical[1].LedgerName)
	assert.Equal(t, domain.ActionAccept, *doc.Canonical[1].Action)
	require.Len(t, doc.ReverseCharge, 2)
	assert.Equal(t, 1, doc.ReverseCharge[0].SourceRowID)
	assert.Equal(t, "Purchase IGST 18%", *doc.ReverseCharge[0].LedgerName)
	assert.Equal(t, "checked", *doc.ReverseCharge[0].Narration)
	assert.Nil(t, doc.ReverseCharge[1].LedgerName)
}

func TestSynchronize_ViewEditUsesViewNumbering(t *testing.T) {
	e := newEngine()
	doc := syncDoc(e)

	// Sr No 2 in the reverse-charge view is RC2, canonical Sr No 4.
	changed, err := e.Synchronize(doc, domain.ViewReverseCharge, []domain.EditRequest{
		edit(2, domain.LedgerFields{LedgerName: domain.Some("RCM Purchase")}),
	})

	require.NoError(t, err)
	assert.True(t, changed)
	assert.Nil(t, doc.Canonical[1].LedgerName)
	require.NotNil(t, doc.Canonical[3].LedgerName)
	assert.Equal(t, "RCM Purchase", *doc.Canonical[3].LedgerName)
	assert.Equal(t, "RCM Purchase", *doc.ReverseCharge[1].LedgerName)
	assert.Equal(t, 3, doc.ReverseCharge[1].SourceRowID)
}

func TestSynchronize_IndexFallback(t *testing.T) {
	e := newEngine()
	doc := syncDoc(e)

	changed, err := e.Synchronize(doc, domain.ViewMismatched, []domain.EditRequest{
		{SerialNo: intPtr(99), Index: intPtr(0), LedgerFields: domain.LedgerFields{ActionReason: domain.Some("rate differs")}},
	})

	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "rate differs", *doc.Canonical[2].ActionReason)
	assert.Equal(t, "rate differs", *doc.Mismatched[0].ActionReason)
}

func TestSynchronize_IdempotentSecondCallIsNoop(t *testing.T) {
	e := newEngine()
	doc := syncDoc(e)
	edits := []domain.EditRequest{edit(1, domain.LedgerFields{LedgerName: domain.Some("Purchase 18%")})}

	changed, err := e.Synchronize(doc, domain.ViewCanonical, edits)
	require.NoError(t, err)
	require.True(t, changed)

	snapshot := *doc
	snapshot.Canonical = append(domain.Records(nil), doc.Canonical...)

	changed, err = e.Synchronize(doc, domain.ViewCanonical, edits)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, snapshot.Canonical, doc.Canonical)
}

func TestSynchronize_ExplicitNullClears(t *testing.T) {
	e := newEngine()
	doc := syncDoc(e)
	_, err := e.Synchronize(doc, domain.ViewCanonical, []domain.EditRequest{
		edit(1, domain.LedgerFields{LedgerName: domain.Some("Purchase"), Narration: domain.Some("n")}),
	})
	require.NoError(t, err)

	changed, err := e.Synchronize(doc, domain.ViewCanonical, []domain.EditRequest{
		edit(1, domain.LedgerFields{LedgerName: domain.Null[string]()}),
	})

	require.NoError(t, err)
	assert.True(t, changed)
	assert.Nil(t, doc.Canonical[0].LedgerName)
	require.NotNil(t, doc.Canonical[0].Narration)
	assert.Equal(t, "n", *doc.Canonical[0].Narration)
}

func TestSynchronize_DisallowMembershipFollowsLedgerName(t *testing.T) {
	e := newEngine()
	doc := syncDoc(e)
	require.Empty(t, doc.Disallow)

	_, err := e.Synchronize(doc, domain.ViewReverseCharge, []domain.EditRequest{
		edit(1, domain.LedgerFields{LedgerName: domain.Some("GST Disallow - Blocked")}),
	})
	require.NoError(t, err)

	require.Len(t, doc.Disallow, 1)
	assert.Equal(t, 1, doc.Disallow[0].SourceRowID)
	assert.Equal(t, 1, doc.Disallow[0].SerialNo)
	assert.Equal(t, []string{"RC1", "RC2"}, invoiceNumbers(doc.ReverseCharge))
	assert.Equal(t, []string{"MM1"}, invoiceNumbers(doc.Mismatched))

	// The row can also be edited from the Disallow view itself.
	_, err = e.Synchronize(doc, domain.ViewDisallow, []domain.EditRequest{
		edit(1, domain.LedgerFields{LedgerName: domain.Some("Purchase RCM")}),
	})
	require.NoError(t, err)

	assert.Empty(t, doc.Disallow)
	assert.Equal(t, "Purchase RCM", *doc.Canonical[1].LedgerName)
	assert.Equal(t, []string{"RC1", "RC2"}, invoiceNumbers(doc.ReverseCharge))
}

func TestSynchronize_RenumbersEveryView(t *testing.T) {
	e := newEngine()
	doc := syncDoc(e)
	for i := range doc.ReverseCharge {
		doc.ReverseCharge[i].SerialNo = 40 + i
	}
	doc.Canonical[0].SerialNo = 7

	_, err := e.Synchronize(doc, domain.ViewReverseCharge, []domain.EditRequest{
		edit(41, domain.LedgerFields{Narration: domain.Some("x")}),
	})
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3, 4}, serials(doc.Canonical))
	assert.Equal(t, []int{1, 2}, serials(doc.ReverseCharge))
	assert.Equal(t, []int{1}, serials(doc.Mismatched))
	assert.Equal(t, []int{0, 1, 2, 3}, rowIDs(doc.Canonical))
}

func TestSynchronize_Errors(t *testing.T) {
	e := newEngine()

	t.Run("empty view", func(t *testing.T) {
		doc := processed(e, igstRow("P1", "27ABCDE1234F1Z5", 1000, 180, "No"))
		_, err := e.Synchronize(doc, domain.ViewReverseCharge, []domain.EditRequest{edit(1, domain.LedgerFields{})})
		assert.ErrorIs(t, err, domain.ErrViewEmpty)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})

	t.Run("no matching rows", func(t *testing.T) {
		doc := syncDoc(e)
		_, err := e.Synchronize(doc, domain.ViewCanonical, []domain.EditRequest{
			{SerialNo: intPtr(50), LedgerFields: domain.LedgerFields{LedgerName: domain.Some("x")}},
			{Index: intPtr(-1), LedgerFields: domain.LedgerFields{LedgerName: domain.Some("x")}},
			{LedgerFields: domain.LedgerFields{LedgerName: domain.Some("x")}},
		})
		assert.ErrorIs(t, err, domain.ErrNoMatchingRows)
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
		assert.Nil(t, doc.Canonical[0].LedgerName)
	})

	t.Run("unknown view", func(t *testing.T) {
		doc := syncDoc(e)
		_, err := e.Synchronize(doc, domain.ViewName("bogus"), nil)
		assert.ErrorIs(t, err, domain.ErrInvalidView)
	})

	t.Run("invalid action leaves document untouched", func(t *testing.T) {
		doc := syncDoc(e)
		_, err := e.Synchronize(doc, domain.ViewCanonical, []domain.EditRequest{
			edit(1, domain.LedgerFields{LedgerName: domain.Some("x")}),
			edit(2, domain.LedgerFields{Action: domain.Some(domain.Action("Maybe"))}),
		})
		assert.ErrorIs(t, err, domain.ErrInvalidAction)
		assert.Nil(t, doc.Canonical[0].LedgerName)
	})
}

func TestSynchronize_ProfileEditableFields(t *testing.T) {
	t.Run("2B ignores supplier name and ITC", func(t *testing.T) {
		e := newEngineFor(ledger.Profile2B)
		doc := syncDoc(e)

		changed, err := e.Synchronize(doc, domain.ViewCanonical, []domain.EditRequest{
			edit(1, domain.LedgerFields{SupplierName: domain.Some("Renamed"), ITCAvailability: domain.Some("No")}),
		})

		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, "27ABCDE1234F1Z5", doc.Canonical[0].SupplierName)
		assert.Empty(t, doc.Disallow)
	})

	t.Run("2A ITC no routes to disallow", func(t *testing.T) {
		e := newEngineFor(ledger.Profile2A)
		doc := syncDoc(e)

		changed, err := e.Synchronize(doc, domain.ViewCanonical, []domain.EditRequest{
			edit(1, domain.LedgerFields{SupplierName: domain.Some("Renamed"), ITCAvailability: domain.Some("n")}),
		})

		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, "Renamed", doc.Canonical[0].SupplierName)
		assert.Equal(t, domain.ITCNo, doc.Canonical[0].ITCAvailability)
		assert.Equal(t, []string{"P1"}, invoiceNumbers(doc.Disallow))

		_, err = e.Synchronize(doc, domain.ViewDisallow, []domain.EditRequest{
			edit(1, domain.LedgerFields{ITCAvailability: domain.Some("yes")}),
		})
		require.NoError(t, err)
		assert.Empty(t, doc.Disallow)
	})
}

func TestAppend_ContinuesSourceRowIDs(t *testing.T) {
	e := newEngine()
	doc := syncDoc(e)

	added, err := e.Append(doc, []domain.RawRow{
		igstRow("MAN-1", "27ABCDE1234F1Z5", 500, 90, "Yes"),
		igstRow("MAN-2", "27ABCDE1234F1Z5", 500, 10, "No"),
	})

	require.NoError(t, err)
	assert.Equal(t, 2, added)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, rowIDs(doc.Canonical))
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, serials(doc.Canonical))
	assert.Equal(t, []string{"RC1", "RC2", "MAN-1"}, invoiceNumbers(doc.ReverseCharge))
	assert.Equal(t, []string{"MM1", "MAN-2"}, invoiceNumbers(doc.Mismatched))
	assert.Equal(t, []int{1, 2}, serials(doc.Mismatched))
}

func TestAppend_AfterRemovalNeverReusesIdentity(t *testing.T) {
	e := newEngine()
	doc := syncDoc(e)
	doc.Canonical = append(domain.Records{doc.Canonical[0]}, doc.Canonical[2:]...)

	_, err := e.Append(doc, []domain.RawRow{igstRow("MAN-1", "27ABCDE1234F1Z5", 500, 90, "No")})

	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 3, 4}, rowIDs(doc.Canonical))
}

func TestAppend_NoRows(t *testing.T) {
	e := newEngine()
	_, err := e.Append(syncDoc(e), nil)
	assert.ErrorIs(t, err, domain.ErrNoRows)
}

func TestNextSourceRowID(t *testing.T) {
	assert.Equal(t, 0, ledger.NextSourceRowID(nil))
	assert.Equal(t, 3, ledger.NextSourceRowID(domain.Records{{SourceRowID: 0}, {SourceRowID: 1}, {SourceRowID: 2}}))
	assert.Equal(t, 8, ledger.NextSourceRowID(domain.Records{{SourceRowID: 7}}))
}
