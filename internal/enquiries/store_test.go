package enquiries

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededStore(t *testing.T) (*Store, Enquiry) {
	t.Helper()
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	calls := 0
	store := NewStore().WithClock(func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Minute)
	})
	list, err := store.Create(&CreateRequest{
		Name:    "Priya Shah",
		Email:   "priya@example.com",
		Message: "Do you cover weekend walks?",
	})
	require.NoError(t, err)
	require.Len(t, list.Enquiries, 1)
	return store, list.Enquiries[0]
}

func strptr(s string) *string { return &s }
func boolptr(b bool) *bool    { return &b }

func TestCreateValidation(t *testing.T) {
	store := NewStore()

	_, err := store.Create(&CreateRequest{Email: "a@b.c", Message: "hi"})
	assert.ErrorIs(t, err, ErrNameRequired)

	_, err = store.Create(&CreateRequest{Name: "A", Message: "hi"})
	assert.ErrorIs(t, err, ErrEmailRequired)

	_, err = store.Create(&CreateRequest{Name: "A", Email: "a@b.c"})
	assert.ErrorIs(t, err, ErrMessageRequired)
}

func TestNewEnquiryCountsAsOpen(t *testing.T) {
	store, created := seededStore(t)

	list := store.List()
	assert.Equal(t, Counts{Open: 1, Total: 1}, list.Counts)
	assert.Equal(t, StatusNew, created.Status)
}

func TestStatusWorkflow(t *testing.T) {
	store, created := seededStore(t)

	list, err := store.Update(created.ID, &UpdateRequest{Status: strptr(StatusInProgress)})
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, list.Enquiries[0].Status)
	assert.Equal(t, 1, list.Counts.Open)

	list, err = store.Update(created.ID, &UpdateRequest{Status: strptr(StatusComplete)})
	require.NoError(t, err)
	assert.Equal(t, StatusComplete, list.Enquiries[0].Status)
	assert.Equal(t, 0, list.Counts.Open)

	list, err = store.Update(created.ID, &UpdateRequest{Status: strptr(StatusNew)})
	require.NoError(t, err)
	assert.Equal(t, StatusNew, list.Enquiries[0].Status)

	_, err = store.Update(created.ID, &UpdateRequest{Status: strptr("archived")})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestLegacyCompletedFlag(t *testing.T) {
	store, created := seededStore(t)

	list, err := store.Update(created.ID, &UpdateRequest{Completed: boolptr(true)})
	require.NoError(t, err)
	assert.Equal(t, StatusComplete, list.Enquiries[0].Status)

	list, err = store.Update(created.ID, &UpdateRequest{Completed: boolptr(false)})
	require.NoError(t, err)
	assert.Equal(t, StatusNew, list.Enquiries[0].Status)
}

func TestDetailEdit(t *testing.T) {
	store, created := seededStore(t)

	list, err := store.Update(created.ID, &UpdateRequest{
		Name:    strptr("Priya S."),
		Email:   strptr("priya.shah@example.com"),
		Phone:   strptr("07700 900123"),
		Message: strptr("Weekend walks for two dogs?"),
	})
	require.NoError(t, err)

	updated := list.Enquiries[0]
	assert.Equal(t, "Priya S.", updated.Name)
	assert.Equal(t, "priya.shah@example.com", updated.Email)
	assert.Equal(t, "07700 900123", updated.Phone)
	assert.Equal(t, "Weekend walks for two dogs?", updated.Message)

	_, err = store.Update(created.ID, &UpdateRequest{Name: strptr("  ")})
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestRejectedEditLeavesRecordUntouched(t *testing.T) {
	store, created := seededStore(t)

	_, err := store.Update(created.ID, &UpdateRequest{
		Name:    strptr("Changed Name"),
		Email:   strptr("changed@example.com"),
		Phone:   strptr("07700 000000"),
		Message: strptr("   "),
	})
	require.ErrorIs(t, err, ErrMessageRequired)

	after := store.List().Enquiries[0]
	assert.Equal(t, created.Name, after.Name)
	assert.Equal(t, created.Email, after.Email)
	assert.Equal(t, created.Phone, after.Phone)
	assert.Equal(t, created.Message, after.Message)

	_, err = store.Update(created.ID, &UpdateRequest{
		Status: strptr("archived"),
		Name:   strptr("Changed Name"),
	})
	require.ErrorIs(t, err, ErrInvalidStatus)
	assert.Equal(t, created.Name, store.List().Enquiries[0].Name)
}

func TestDelete(t *testing.T) {
	store, created := seededStore(t)

	list, err := store.Delete(created.ID)
	require.NoError(t, err)
	assert.Empty(t, list.Enquiries)
	assert.Equal(t, Counts{}, list.Counts)

	_, err = store.Delete(created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListNewestFirst(t *testing.T) {
	store, _ := seededStore(t)

	_, err := store.Create(&CreateRequest{Name: "Later", Email: "later@example.com", Message: "hi"})
	require.NoError(t, err)

	list := store.List()
	require.Len(t, list.Enquiries, 2)
	assert.Equal(t, "Later", list.Enquiries[0].Name)
}

func TestAllowedTransitions(t *testing.T) {
	labels := func(status string) []string {
		var out []string
		for _, action := range AllowedTransitions(status) {
			out = append(out, action.Label)
		}
		return out
	}

	assert.Equal(t, []string{"Mark in progress", "Mark complete"}, labels(StatusNew))
	assert.Equal(t, []string{"Mark complete", "Reopen"}, labels(StatusInProgress))
	assert.Equal(t, []string{"Reopen"}, labels(StatusComplete))
}

func TestMarshalIncludesLegacyCompleted(t *testing.T) {
	data, err := json.Marshal(Enquiry{ID: "1", Status: StatusComplete})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, true, decoded["completed"])
	assert.Equal(t, StatusComplete, decoded["status"])
}
