package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/spacesedan/postsmith/internal/models"
)

type mockDynamo struct {
	err       error
	callCount int
	lastInput *dynamodb.PutItemInput
}

func (m *mockDynamo) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.callCount++
	m.lastInput = params
	if m.err != nil {
		return nil, m.err
	}
	return &dynamodb.PutItemOutput{}, nil
}

func TestRecord(t *testing.T) {
	db := &mockDynamo{}
	l := NewDynamoLedger(db, "PublishedPosts", 24*time.Hour)
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	post := models.PublishedPost{
		ID: 42, Link: "https://blog.example/?p=42", Title: "Neon Labs",
		Status: models.StatusDraft, Topic: "tech", MediaID: 9, PublishedAt: now,
	}
	if err := l.Record(context.Background(), post); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	if db.callCount != 1 || *db.lastInput.TableName != "PublishedPosts" {
		t.Fatalf("PutItem calls = %d, input = %+v", db.callCount, db.lastInput)
	}
	ttl, ok := db.lastInput.Item["expires_at"].(*types.AttributeValueMemberN)
	if !ok || ttl.Value != "1777680000" {
		t.Errorf("expires_at = %#v, want 1777680000", db.lastInput.Item["expires_at"])
	}
	if _, ok := db.lastInput.Item["article_url"]; ok {
		t.Error("empty article_url should be omitted")
	}

	var got models.PublishedPost
	if err := attributevalue.UnmarshalMap(db.lastInput.Item, &got); err != nil {
		t.Fatalf("UnmarshalMap() error = %v", err)
	}
	if got != post {
		t.Errorf("stored post = %+v, want %+v", got, post)
	}
}

func TestRecord_PutFails(t *testing.T) {
	cause := errors.New("throttled")
	l := NewDynamoLedger(&mockDynamo{err: cause}, "PublishedPosts", 0)

	if err := l.Record(context.Background(), models.PublishedPost{ID: 1}); !errors.Is(err, cause) {
		t.Fatalf("Record() error = %v, want wrapped %v", err, cause)
	}
	if l.retention != DEFAULT_RETENTION {
		t.Errorf("retention = %v, want default", l.retention)
	}
}
