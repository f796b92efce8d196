package storage

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

const s3KeyPrefix = "posts/"

// S3Config 描述对象存储连接参数，Endpoint 非空时按 MinIO 方式访问。
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	DisableSSL      bool
	Allowed         []string
}

// S3Store stores uploads as objects in a bucket.
type S3Store struct {
	client  s3iface.S3API
	bucket  string
	baseURL string
	allowed []string
	now     func() time.Time
}

// NewS3Store opens an AWS session from cfg.
func NewS3Store(cfg S3Config) (*S3Store, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("s3 bucket is required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsConfig := &aws.Config{Region: aws.String(region)}
	if cfg.AccessKeyID != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}
	if cfg.Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
		awsConfig.DisableSSL = aws.Bool(cfg.DisableSSL)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return NewS3StoreWithClient(s3.New(sess), cfg.Bucket, objectBaseURL(cfg.Bucket, region, cfg.Endpoint, cfg.DisableSSL), cfg.Allowed), nil
}

// NewS3StoreWithClient wires an existing client, mainly for tests.
func NewS3StoreWithClient(client s3iface.S3API, bucket, baseURL string, allowed []string) *S3Store {
	return &S3Store{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
		allowed: allowed,
		now:     time.Now,
	}
}

// Store uploads data and returns the object's public URL.
func (s *S3Store) Store(data []byte, originalName string) (string, error) {
	if err := ValidateImage(data, originalName, s.allowed); err != nil {
		return "", err
	}

	key := s3KeyPrefix + objectName(originalName, s.now())
	_, err := s.client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(http.DetectContentType(data)),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to S3: %w", err)
	}
	return s.baseURL + "/" + key, nil
}

// Delete removes the object behind a URL returned by Store.
func (s *S3Store) Delete(ref string) error {
	key, ok := strings.CutPrefix(ref, s.baseURL+"/")
	if !ok || key == "" {
		return fmt.Errorf("reference %q is not managed by this store", ref)
	}
	_, err := s.client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}
	return nil
}

func objectBaseURL(bucket, region, endpoint string, disableSSL bool) string {
	if endpoint != "" && !strings.Contains(endpoint, "amazonaws.com") {
		protocol := "https"
		if disableSSL {
			protocol = "http"
		}
		host := strings.TrimPrefix(strings.TrimPrefix(endpoint, "http://"), "https://")
		return fmt.Sprintf("%s://%s/%s", protocol, strings.TrimRight(host, "/"), bucket)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
}
