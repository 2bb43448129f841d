package apiclient

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

func TestUnwrapListShapesAgree(t *testing.T) {
	shapes := map[string]string{
		"raw array":        `[{"id":1,"name":"Paracetamol"},{"id":"2","name":"Ibuprofen"}]`,
		"entities total":   `{"entities":[{"id":1,"name":"Paracetamol"},{"id":"2","name":"Ibuprofen"}],"total":2}`,
		"items total":      `{"items":[{"id":1,"name":"Paracetamol"},{"id":"2","name":"Ibuprofen"}],"total":2}`,
		"success envelope": `{"success":true,"data":{"items":[{"id":1,"name":"Paracetamol"},{"id":"2","name":"Ibuprofen"}],"total":2}}`,
		"envelope array":   `{"success":true,"data":[{"id":1,"name":"Paracetamol"},{"id":"2","name":"Ibuprofen"}]}`,
	}
	want := []row{{ID: "1", Name: "Paracetamol"}, {ID: "2", Name: "Ibuprofen"}}

	for name, body := range shapes {
		t.Run(name, func(t *testing.T) {
			items, total := UnwrapList[row](json.RawMessage(body))
			assert.Equal(t, want, items)
			assert.Equal(t, 2, total)
		})
	}
}

func TestUnwrapListKeepsServerTotal(t *testing.T) {
	items, total := UnwrapList[row](json.RawMessage(`{"success":true,"data":{"entities":[{"id":1,"name":"A"}],"total":57}}`))
	require.Len(t, items, 1)
	assert.Equal(t, 57, total)

	items, total = UnwrapList[row](json.RawMessage(`{"data":[{"id":1,"name":"A"}],"meta":{"total":9}}`))
	require.Len(t, items, 1)
	assert.Equal(t, 9, total)
}

func TestUnwrapListUnknownShapeIsEmpty(t *testing.T) {
	for _, body := range []string{``, `null`, `"oops"`, `{"success":false,"message":"boom"}`, `{"data":{"name":"x"}}`} {
		items, total := UnwrapList[row](json.RawMessage(body))
		assert.NotNil(t, items, body)
		assert.Empty(t, items, body)
		assert.Zero(t, total, body)
	}
}

func TestUnwrapListSkipsMalformedRows(t *testing.T) {
	items, total := UnwrapList[row](json.RawMessage(`[{"id":1,"name":"A"},42,{"id":{"x":1}},{"id":3,"name":"C"}]`))
	assert.Equal(t, []row{{ID: "1", Name: "A"}, {ID: "3", Name: "C"}}, items)
	assert.Equal(t, 2, total)
}

func TestUnwrapRecord(t *testing.T) {
	rec, ok := UnwrapRecord[row](json.RawMessage(`{"success":true,"data":{"id":7,"name":"Amoxicillin"},"message":"ok"}`))
	require.True(t, ok)
	assert.Equal(t, row{ID: "7", Name: "Amoxicillin"}, rec)

	rec, ok = UnwrapRecord[row](json.RawMessage(`{"id":"abc","name":"Cetirizine"}`))
	require.True(t, ok)
	assert.Equal(t, ID("abc"), rec.ID)

	_, ok = UnwrapRecord[row](json.RawMessage(`{"success":true,"data":null}`))
	assert.False(t, ok)

	_, ok = UnwrapRecord[row](json.RawMessage(`[1,2]`))
	assert.False(t, ok)
}

func TestUnwrapMessage(t *testing.T) {
	assert.Equal(t, "Created", UnwrapMessage(json.RawMessage(`{"success":true,"message":"Created","data":{}}`)))
	assert.Empty(t, UnwrapMessage(json.RawMessage(`[]`)))
}

func TestDateAcceptsTimestamps(t *testing.T) {
	var payload struct {
		Expiry Date `json:"expiry"`
		Empty  Date `json:"empty"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"expiry":"2026-03-01T00:00:00.000Z","empty":null}`), &payload))
	assert.Equal(t, "2026-03-01", payload.Expiry.String())
	assert.True(t, payload.Empty.IsZero())

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"expiry":"2026-03-01","empty":null}`, string(out))
}
