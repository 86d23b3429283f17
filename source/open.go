package source

import (
	"context"
	"net/url"
	"os"
	"strings"

	"github.com/Azure/azure-storage-blob-go/azblob"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/hexbee-net/errors"

	azsource "github.com/hexbee-net/dictcol/source/azblob"
	"github.com/hexbee-net/dictcol/source/gcs"
	"github.com/hexbee-net/dictcol/source/hdfs"
	"github.com/hexbee-net/dictcol/source/local"
	"github.com/hexbee-net/dictcol/source/memory"
	"github.com/hexbee-net/dictcol/source/s3"
)

const (
	errUnsupportedScheme = errors.Error("unsupported URI scheme")
	errInvalidURI        = errors.Error("invalid URI")

	azureBlobHostSuffix = ".blob.core.windows.net"
)

var (
	_ Reader = (*local.Reader)(nil)
	_ Reader = (*memory.Reader)(nil)
	_ Reader = (*s3.Reader)(nil)
	_ Reader = (*gcs.Reader)(nil)
	_ Reader = (*azsource.Reader)(nil)
	_ Reader = (*hdfs.Reader)(nil)
)

// Open opens the object named by uri. Supported forms are local paths,
// file://, s3://bucket/key, gs://bucket/name, hdfs://namenode/path and
// https://account.blob.core.windows.net/container/blob.
//
// Remote clients are configured from the environment.
func Open(ctx context.Context, uri string) (Reader, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(errInvalidURI, err.Error()),
			errors.Fields{
				"uri": uri,
			})
	}

	switch u.Scheme {
	case "", "file":
		return local.NewReader(u.Path)

	case "s3":
		sess, err := session.NewSession()
		if err != nil {
			return nil, errors.Wrap(err, "failed to create AWS session")
		}

		bucket, key, err := bucketObject(u)
		if err != nil {
			return nil, err
		}

		return s3.NewReader(ctx, bucket, key, sess)

	case "gs", "gcs":
		bucket, name, err := bucketObject(u)
		if err != nil {
			return nil, err
		}

		return gcs.NewReader(ctx, bucket, name)

	case "hdfs":
		user := u.User.Username()
		if user == "" {
			user = os.Getenv("HADOOP_USER_NAME")
		}

		return hdfs.NewReader([]string{u.Host}, user, u.Path)

	case "http", "https":
		if !strings.HasSuffix(u.Hostname(), azureBlobHostSuffix) {
			break
		}

		credential, err := azureCredential()
		if err != nil {
			return nil, err
		}

		return azsource.NewReader(ctx, uri, credential, azsource.ReaderOptions{})
	}

	return nil, errors.WithFields(
		errors.WithStack(errUnsupportedScheme),
		errors.Fields{
			"uri": uri,
		})
}

func bucketObject(u *url.URL) (bucket, object string, err error) {
	bucket = u.Host
	object = strings.TrimPrefix(u.Path, "/")

	if bucket == "" || object == "" {
		return "", "", errors.WithFields(
			errors.Wrap(errInvalidURI, "missing bucket or object name"),
			errors.Fields{
				"uri": u.String(),
			})
	}

	return bucket, object, nil
}

// azureCredential uses the shared key of AZURE_STORAGE_ACCOUNT and
// AZURE_STORAGE_KEY when both are set, anonymous access otherwise.
func azureCredential() (azblob.Credential, error) {
	account, key := os.Getenv("AZURE_STORAGE_ACCOUNT"), os.Getenv("AZURE_STORAGE_KEY")
	if account == "" || key == "" {
		return azblob.NewAnonymousCredential(), nil
	}

	credential, err := azblob.NewSharedKeyCredential(account, key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Azure shared key credential")
	}

	return credential, nil
}
