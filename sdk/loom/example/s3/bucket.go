// *** WARNING: this file was generated by loomgen. ***
// *** Do not edit by hand unless you're certain you know what you are doing! ***

package s3

import (
	"github.com/zclconf/go-cty/cty"

	"github.com/loomstack/loom/sdk/loom"
)

var bucketTable = loom.NewPropertyTable(map[string]string{
	"bucket_domain_name":          "bucketDomainName",
	"bucket_regional_domain_name": "bucketRegionalDomainName",
	"force_destroy":               "forceDestroy",
})

var bucketType = &loom.BindingType{
	Token: "aws:s3/bucket:Bucket",
	Outputs: []string{
		"arn",
		"bucket",
		"bucketDomainName",
		"bucketRegionalDomainName",
		"region",
		"tags",
	},
	Table: bucketTable,
}

// Bucket is a typed handle for an aws:s3/bucket:Bucket resource.
type Bucket struct {
	*loom.Binding
}

// BucketArgs is the set of arguments for constructing a Bucket.
type BucketArgs struct {
	// Bucket is the name of the bucket. If omitted, the provider assigns a
	// random, unique name.
	Bucket string

	// Acl is the canned ACL to apply.
	Acl string

	// ForceDestroy indicates all objects should be deleted from the bucket
	// so that the bucket can be destroyed without error.
	ForceDestroy bool

	// Tags is a map of tags to assign to the bucket.
	Tags map[string]string
}

// NewBucket registers a new Bucket with the given unique name, arguments, and
// options.
func NewBucket(ctx *loom.Context, name string, args *BucketArgs, opts *loom.ResourceOptions) (*Bucket, error) {
	if args == nil {
		args = &BucketArgs{}
	}

	inputs := loom.PropertyMap{}
	if args.Bucket != "" {
		inputs["bucket"] = cty.StringVal(args.Bucket)
	}
	if args.Acl != "" {
		inputs["acl"] = cty.StringVal(args.Acl)
	}
	if args.ForceDestroy {
		inputs["force_destroy"] = cty.BoolVal(args.ForceDestroy)
	}
	if len(args.Tags) > 0 {
		tags := make(map[string]cty.Value, len(args.Tags))
		for k, v := range args.Tags {
			tags[k] = cty.StringVal(v)
		}
		inputs["tags"] = cty.MapVal(tags)
	}

	b, err := ctx.RegisterBinding(bucketType, loom.BindingRequest{
		Name:   name,
		Inputs: inputs,
		Opts:   opts,
	})
	if err != nil {
		return nil, err
	}
	return &Bucket{Binding: b}, nil
}

// GetBucket looks up an existing Bucket resource's state with the given name,
// id, and optional extra options used to qualify the lookup.
func GetBucket(ctx *loom.Context, name, id string, opts *loom.ResourceOptions) (*Bucket, error) {
	b, err := ctx.GetBinding(bucketType, name, id, opts)
	if err != nil {
		return nil, err
	}
	return &Bucket{Binding: b}, nil
}

// Arn is the ARN of the bucket.
func (b *Bucket) Arn() *loom.Output {
	return b.Output("arn")
}

// BucketName is the provider-assigned name of the bucket.
func (b *Bucket) BucketName() *loom.Output {
	return b.Output("bucket")
}

// BucketDomainName is the bucket domain name.
func (b *Bucket) BucketDomainName() *loom.Output {
	return b.Output("bucket_domain_name")
}

// Region is the region the bucket resides in.
func (b *Bucket) Region() *loom.Output {
	return b.Output("region")
}

// Tags is the map of tags assigned to the bucket.
func (b *Bucket) Tags() *loom.Output {
	return b.Output("tags")
}
