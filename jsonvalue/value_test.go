package jsonvalue

import (
	"encoding/json"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestDecodePreservesKeyOrder(t *testing.T) {
	obj, err := DecodeObject([]byte(`{"zeta": 1, "alpha": 2, "mid": {"b": true, "a": null}}`))
	assert.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, obj.Keys())

	mid, ok := obj.Object("mid")
	assert.True(t, ok)
	assert.Equal(t, []string{"b", "a"}, mid.Keys())
	assert.True(t, IsNull(mustGet(t, mid, "a")))
}

func TestDecodeDuplicateKeysKeepFirstPosition(t *testing.T) {
	obj, err := DecodeObject([]byte(`{"a": 1, "b": 2, "a": 3}`))
	assert.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, obj.Keys())

	n, ok := AsNumber(mustGet(t, obj, "a"))
	assert.True(t, ok)
	assert.Equal(t, 3.0, n)
}

func TestDecodeVariants(t *testing.T) {
	tests := []struct {
		input string
		kind  Kind
	}{
		{`null`, KindNull},
		{`true`, KindBool},
		{`12.5`, KindNumber},
		{`-3`, KindNumber},
		{`"x"`, KindString},
		{`[1, "a", null]`, KindArray},
		{`{}`, KindObject},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := Decode([]byte(tt.input))
			assert.NoError(t, err)
			assert.Equal(t, tt.kind, v.Kind())
		})
	}
}

func TestDecodeRejectsTrailingData(t *testing.T) {
	_, err := Decode([]byte(`{"a": 1} {"b": 2}`))
	assert.IsError(t, err, ErrTrailingData)
}

func TestDecodeObjectRejectsNonObject(t *testing.T) {
	_, err := DecodeObject([]byte(`[1, 2]`))
	assert.Error(t, err)
}

func TestMarshalRoundTripKeepsOrder(t *testing.T) {
	input := `{"z":1,"a":[true,null,"s"],"m":{"y":2.5,"x":-1}}`
	v, err := Decode([]byte(input))
	assert.NoError(t, err)

	out, err := json.Marshal(v)
	assert.NoError(t, err)
	assert.Equal(t, input, string(out))
}

func TestBoolIsNotNumber(t *testing.T) {
	_, ok := AsNumber(Bool(true))
	assert.False(t, ok)
}

func TestObjectSetDelete(t *testing.T) {
	obj := NewObject(0)
	obj.Set("a", Number(1))
	obj.Set("b", nil)
	obj.Set("c", String("x"))
	obj.Delete("b")
	obj.Delete("missing")

	assert.Equal(t, []string{"a", "c"}, obj.Keys())
	assert.False(t, obj.Has("b"))
	assert.Equal(t, 2, obj.Len())
}

func TestCloneIsDeep(t *testing.T) {
	orig, err := DecodeObject([]byte(`{"a": {"b": 1}}`))
	assert.NoError(t, err)

	c := orig.Clone()
	inner, _ := c.Object("a")
	inner.Set("b", Number(2))

	origInner, _ := orig.Object("a")
	n, _ := AsNumber(mustGet(t, origInner, "b"))
	assert.Equal(t, 1.0, n)
}

func TestFromAnySortsMapKeys(t *testing.T) {
	v := FromAny(map[string]any{"b": 1.0, "a": []any{"x", nil}})
	obj := v.(*Object)
	assert.Equal(t, []string{"a", "b"}, obj.Keys())

	back := ToAny(v).(map[string]any)
	assert.Equal(t, 1.0, back["b"].(float64))
}

func mustGet(t *testing.T, obj *Object, key string) Value {
	t.Helper()
	v, ok := obj.Get(key)
	assert.True(t, ok, "missing key %q", key)
	return v
}
