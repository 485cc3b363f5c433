package model

import (
	"time"

	"github.com/mongodb/anser/bsonutil"
	"github.com/mongodb/grip"
	"github.com/pkg/errors"
)

// ArtifactInfo describes a file in offline blob storage that holds the
// sampled waypoints or derived data for a trajectory or dataset.
type ArtifactInfo struct {
	Type        PailType        `bson:"type"`
	Bucket      string          `bson:"bucket"`
	Prefix      string          `bson:"prefix"`
	Path        string          `bson:"path"`
	Format      FileDataFormat  `bson:"format"`
	Compression FileCompression `bson:"compression"`
	Schema      FileSchema      `bson:"schema"`
	Tags        []string        `bson:"tags,omitempty"`
	CreatedAt   time.Time       `bson:"created_at"`
}

var (
	artifactInfoTypeKey        = bsonutil.MustHaveTag(ArtifactInfo{}, "Type")
	artifactInfoBucketKey      = bsonutil.MustHaveTag(ArtifactInfo{}, "Bucket")
	artifactInfoPrefixKey      = bsonutil.MustHaveTag(ArtifactInfo{}, "Prefix")
	artifactInfoPathKey        = bsonutil.MustHaveTag(ArtifactInfo{}, "Path")
	artifactInfoFormatKey      = bsonutil.MustHaveTag(ArtifactInfo{}, "Format")
	artifactInfoCompressionKey = bsonutil.MustHaveTag(ArtifactInfo{}, "Compression")
	artifactInfoSchemaKey      = bsonutil.MustHaveTag(ArtifactInfo{}, "Schema")
	artifactInfoTagsKey        = bsonutil.MustHaveTag(ArtifactInfo{}, "Tags")
	artifactInfoCreatedAtKey   = bsonutil.MustHaveTag(ArtifactInfo{}, "CreatedAt")
)

// GetDownloadURL returns, if applicable, the download URL for the object
// backing this artifact.
func (a *ArtifactInfo) GetDownloadURL() string {
	return a.Type.GetDownloadURL(a.Bucket, a.Prefix, a.Path)
}

// Validate checks that the artifact names a storage location and carries
// valid format, compression, and schema values.
func (a *ArtifactInfo) Validate() error {
	catcher := grip.NewBasicCatcher()

	if a.Bucket == "" {
		catcher.Add(errors.New("must specify a bucket"))
	}
	if a.Path == "" {
		catcher.Add(errors.New("must specify a path within the bucket"))
	}
	catcher.Add(a.Format.Validate())
	catcher.Add(a.Compression.Validate())
	catcher.Add(a.Schema.Validate())

	return catcher.Resolve()
}
