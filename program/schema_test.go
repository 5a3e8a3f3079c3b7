package program

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestImportSpecCompilesBindingType(t *testing.T) {
	schema, err := importSpec(packageSpec{
		Name: "aws",
		Resources: []resourceSpec{{
			Token: "aws:s3/bucket:Bucket",
			Inputs: []propertySpec{
				{Name: "bucket", Type: "string"},
				{Name: "force_destroy", Wire: "forceDestroy", Type: "bool"},
			},
			Outputs: []propertySpec{
				{Name: "arn", Type: "string"},
				{Name: "bucket_domain_name", Wire: "bucketDomainName", Type: "string"},
			},
		}},
	})
	require.NoError(t, err)

	rs := schema.resources["aws:s3/bucket:Bucket"]
	require.NotNil(t, rs)
	assert.Equal(t, "aws:s3/bucket:Bucket", rs.typ.Token)
	assert.Equal(t, []string{"arn", "bucketDomainName"}, rs.typ.Outputs)
	assert.Equal(t, "forceDestroy", rs.typ.Table.Wire("force_destroy"))
	assert.Equal(t, "bucket_domain_name", rs.typ.Table.Local("bucketDomainName"))
	assert.Equal(t, []string{"bucket", "force_destroy", "arn", "bucket_domain_name"}, rs.properties)
}

func TestImportSpecRejectsNonBijectiveNames(t *testing.T) {
	_, err := importSpec(packageSpec{
		Name: "aws",
		Resources: []resourceSpec{{
			Token: "aws:x/y:Y",
			Inputs: []propertySpec{
				{Name: "first_name", Wire: "name", Type: "string"},
				{Name: "second_name", Wire: "name", Type: "string"},
			},
		}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `wire name "name"`)
}

func TestImportSpecRejectsConflictingMappings(t *testing.T) {
	_, err := importSpec(packageSpec{
		Name: "aws",
		Resources: []resourceSpec{{
			Token: "aws:x/y:Y",
			Inputs: []propertySpec{
				{Name: "tags", Wire: "tagSet", Type: "string"},
			},
			Outputs: []propertySpec{
				{Name: "tags", Wire: "tagMap", Type: "string"},
			},
		}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"tags"`)
}

func TestImportSpecRejectsDuplicates(t *testing.T) {
	_, err := importSpec(packageSpec{
		Name: "aws",
		Resources: []resourceSpec{{
			Token: "aws:x/y:Y",
			Inputs: []propertySpec{
				{Name: "bucket", Type: "string"},
				{Name: "bucket", Type: "string"},
			},
		}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate input")

	_, err = importSpec(packageSpec{
		Name: "aws",
		Resources: []resourceSpec{
			{Token: "aws:x/y:Y"},
			{Token: "aws:x/y:Y"},
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate resource token")
}

func TestParseTypeString(t *testing.T) {
	cases := []struct {
		input string
		want  cty.Type
	}{
		{"", cty.DynamicPseudoType},
		{"any", cty.DynamicPseudoType},
		{"bool", cty.Bool},
		{"int", cty.Number},
		{"number", cty.Number},
		{"string", cty.String},
		{"list(string)", cty.List(cty.String)},
		{"map(number)", cty.Map(cty.Number)},
		{"list(map(string))", cty.List(cty.Map(cty.String))},
	}
	for _, c := range cases {
		got, err := parseTypeString(c.input)
		require.NoError(t, err, c.input)
		assert.True(t, got.Equals(c.want), "%s: got %v", c.input, got)
	}

	_, err := parseTypeString("set(string)")
	assert.Error(t, err)
}
