package notify_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsportal/internal/domain/entity"
	"newsportal/internal/repository"
	"newsportal/internal/usecase/notify"
)

type emailsRepo struct {
	repository.SubscriptionRepository
	emails       []string
	err          error
	gotPublisher int64
	gotJourn     int64
}

func (r *emailsRepo) SubscriberEmails(_ context.Context, publisherID, journalistID int64) ([]string, error) {
	r.gotPublisher, r.gotJourn = publisherID, journalistID
	return r.emails, r.err
}

func TestRecipients(t *testing.T) {
	repo := &emailsRepo{emails: []string{
		"zoe@example.com",
		" amy@example.com ",
		"AMY@example.com",
		"",
		"not-an-email",
		"Bob <bob@example.com>",
	}}
	got, err := notify.Recipients(context.Background(), repo, &entity.Article{ID: 1, PublisherID: 3, JournalistID: 4})

	require.NoError(t, err)
	assert.Equal(t, []string{"amy@example.com", "bob@example.com", "zoe@example.com"}, got)
	assert.EqualValues(t, 3, repo.gotPublisher)
	assert.EqualValues(t, 4, repo.gotJourn)
}

func TestRecipients_Empty(t *testing.T) {
	got, err := notify.Recipients(context.Background(), &emailsRepo{}, &entity.Article{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRecipients_RepoError(t *testing.T) {
	_, err := notify.Recipients(context.Background(), &emailsRepo{err: errors.New("db down")}, &entity.Article{})
	assert.ErrorContains(t, err, "db down")
}
