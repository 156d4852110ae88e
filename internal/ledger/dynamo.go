// Package ledger keeps a record of published posts in DynamoDB.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/spacesedan/postsmith/internal/models"
)

// DEFAULT_RETENTION is how long a ledger entry lives before the table's
// TTL removes it.
const DEFAULT_RETENTION = 90 * 24 * time.Hour

// PutItemAPI is the slice of *dynamodb.Client the ledger uses.
type PutItemAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

type DynamoLedger struct {
	db        PutItemAPI
	table     string
	retention time.Duration
	now       func() time.Time
}

func NewDynamoLedger(db PutItemAPI, table string, retention time.Duration) *DynamoLedger {
	if retention <= 0 {
		retention = DEFAULT_RETENTION
	}
	return &DynamoLedger{db: db, table: table, retention: retention, now: time.Now}
}

// Record stores post keyed by post_id with an expires_at TTL attribute.
func (l *DynamoLedger) Record(ctx context.Context, post models.PublishedPost) error {
	item, err := attributevalue.MarshalMap(post)
	if err != nil {
		return fmt.Errorf("[Ledger] marshal post %d: %w", post.ID, err)
	}
	item["expires_at"] = &types.AttributeValueMemberN{
		Value: strconv.FormatInt(l.now().Add(l.retention).Unix(), 10),
	}

	if _, err := l.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(l.table),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("[Ledger] put post %d: %w", post.ID, err)
	}

	slog.Info("[Ledger] Recorded post",
		slog.Int("postID", post.ID),
		slog.String("table", l.table))
	return nil
}
