package canon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal_KeyOrderIndependent(t *testing.T) {
	a := map[string]interface{}{"b": 1, "a": 2, "c": []interface{}{1, 2, 3}}
	b := map[string]interface{}{"c": []interface{}{1, 2, 3}, "a": 2, "b": 1}

	encA, err := Marshal(a)
	require.NoError(t, err)
	encB, err := Marshal(b)
	require.NoError(t, err)
	assert.Equal(t, string(encA), string(encB))
	assert.Equal(t, `{"a":2,"b":1,"c":[1,2,3]}`, string(encA))
}

func TestMarshal_NestedObjectsSorted(t *testing.T) {
	v := map[string]interface{}{
		"outer": map[string]interface{}{"z": 1, "y": 2},
	}
	enc, err := Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, `{"outer":{"y":2,"z":1}}`, string(enc))
}

func TestMarshal_ArrayOrderPreserved(t *testing.T) {
	v := []interface{}{"b", "a", "c"}
	enc, err := Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, `["b","a","c"]`, string(enc))
}
