package program

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	structpb "github.com/golang/protobuf/ptypes/struct"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomstack/loom/sdk/loom"
)

const testSchema = `{
	"name": "aws",
	"resources": [
		{
			"token": "aws:s3/bucket:Bucket",
			"inputs": [
				{ "name": "bucket", "type": "string" },
				{ "name": "acl", "type": "string" },
				{ "name": "force_destroy", "wire": "forceDestroy", "type": "bool" },
				{ "name": "tags", "type": "map(string)" }
			],
			"outputs": [
				{ "name": "arn", "type": "string" },
				{ "name": "bucket", "type": "string" },
				{ "name": "bucket_domain_name", "wire": "bucketDomainName", "type": "string" }
			]
		}
	]
}`

const testProgram = `
suffix = script("name + \"-files\"", { name = "site" })

resource "site" "aws:s3/bucket:Bucket" {
	acl           = "private"
	force_destroy = true

	tags = {
		Suffix = suffix
	}
}

alias = site.bucket

outputs {
	siteBucket = alias
	siteDomain = site.bucket_domain_name
}
`

type bucketMocks struct {
	inputs *structpb.Struct
}

func spbString(s string) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_StringValue{StringValue: s}}
}

func (m *bucketMocks) NewResource(typeToken, name string, inputs *structpb.Struct,
	provider, id string) (string, *structpb.Struct, error) {

	m.inputs = inputs
	return "site-abc123", &structpb.Struct{Fields: map[string]*structpb.Value{
		"arn":              spbString("arn:aws:s3:::site-abc123"),
		"bucket":           spbString("site-abc123"),
		"bucketDomainName": spbString("site-abc123.s3.amazonaws.com"),
	}}, nil
}

func inTempDir(t *testing.T, files map[string]string) func() {
	dir, err := ioutil.TempDir("", "program-test")
	require.NoError(t, err)
	for name, contents := range files {
		require.NoError(t, ioutil.WriteFile(filepath.Join(dir, name), []byte(contents), 0600))
	}

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	return func() {
		_ = os.Chdir(wd)
		_ = os.RemoveAll(dir)
	}
}

func TestRunEvaluatesProgram(t *testing.T) {
	defer inTempDir(t, map[string]string{"aws.json": testSchema})()

	mocks := &bucketMocks{}
	files, diags := Run(context.Background(), map[string][]byte{
		"main.pp": []byte(testProgram),
	}, loom.RunInfo{Project: "website", Stack: "dev", Mocks: mocks})

	require.False(t, diags.HasErrors(), "unexpected diagnostics: %v", diags)
	assert.Contains(t, files, "main.pp")

	// The submitted bag carries wire names, not local ones.
	require.NotNil(t, mocks.inputs)
	fields := mocks.inputs.GetFields()
	assert.True(t, fields["forceDestroy"].GetBoolValue())
	_, hasLocal := fields["force_destroy"]
	assert.False(t, hasLocal)
	assert.Equal(t, "private", fields["acl"].GetStringValue())

	// The local was evaluated through the script builtin before registration.
	tags := fields["tags"].GetStructValue().GetFields()
	assert.Equal(t, "site-files", tags["Suffix"].GetStringValue())
}

func TestRunRejectsUnknownResourceType(t *testing.T) {
	defer inTempDir(t, map[string]string{"aws.json": testSchema})()

	_, diags := Run(context.Background(), map[string][]byte{
		"main.pp": []byte(`resource "q" "aws:sqs/queue:Queue" {}`),
	}, loom.RunInfo{Project: "website", Stack: "dev", Mocks: &bucketMocks{}})

	require.True(t, diags.HasErrors())
	assert.Contains(t, diags.Error(), "unknown resource type")
}

func TestRunRejectsMalformedTypeToken(t *testing.T) {
	_, diags := Run(context.Background(), map[string][]byte{
		"main.pp": []byte(`resource "q" "Queue" {}`),
	}, loom.RunInfo{Project: "website", Stack: "dev", Mocks: &bucketMocks{}})

	require.True(t, diags.HasErrors())
	assert.Contains(t, diags.Error(), "invalid resource type token")
}

func TestRunRejectsDuplicateDefinitions(t *testing.T) {
	defer inTempDir(t, map[string]string{"aws.json": testSchema})()

	src := `
resource "site" "aws:s3/bucket:Bucket" {}
site = "also a local"
`
	_, diags := Run(context.Background(), map[string][]byte{
		"main.pp": []byte(src),
	}, loom.RunInfo{Project: "website", Stack: "dev", Mocks: &bucketMocks{}})

	require.True(t, diags.HasErrors())
	assert.Contains(t, diags.Error(), "duplicate definition")
}

func TestRunRejectsUnknownReferences(t *testing.T) {
	defer inTempDir(t, map[string]string{"aws.json": testSchema})()

	_, diags := Run(context.Background(), map[string][]byte{
		"main.pp": []byte(`value = nosuch.thing`),
	}, loom.RunInfo{Project: "website", Stack: "dev", Mocks: &bucketMocks{}})

	require.True(t, diags.HasErrors())
	assert.Contains(t, diags.Error(), "unknown resource")
}

func TestRunRequiresProjectAndStack(t *testing.T) {
	_, diags := Run(context.Background(), nil, loom.RunInfo{Stack: "dev", Mocks: &bucketMocks{}})
	assert.True(t, diags.HasErrors())

	_, diags = Run(context.Background(), nil, loom.RunInfo{Project: "website", Mocks: &bucketMocks{}})
	assert.True(t, diags.HasErrors())
}

func TestRunAdoptsExistingResource(t *testing.T) {
	defer inTempDir(t, map[string]string{"aws.json": testSchema})()

	src := `
resource "site" "aws:s3/bucket:Bucket" {
	options {
		id = "site-abc123"
	}
}

outputs {
	siteArn = site.arn
}
`
	mocks := &bucketMocks{}
	_, diags := Run(context.Background(), map[string][]byte{
		"main.pp": []byte(src),
	}, loom.RunInfo{Project: "website", Stack: "dev", Mocks: mocks})

	require.False(t, diags.HasErrors(), "unexpected diagnostics: %v", diags)
}
