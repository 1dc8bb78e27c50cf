package services

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yukikurage/site-services-api/internal/models"
	"github.com/yukikurage/site-services-api/internal/notify"
)

func TestAnnouncementService_CreateAndList(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()
	admin := env.createUser(t, "Ada", "ada@example.com", models.RoleAdmin)
	resident := env.createUser(t, "Rita", "rita@example.com", models.RoleResident)

	_, err := env.announcements.Create(ctx, admin, CreateAnnouncementInput{Title: "No body"})
	require.ErrorIs(t, err, ErrMissingFields)

	view, err := env.announcements.Create(ctx, admin, CreateAnnouncementInput{
		Title: "Water outage",
		Body:  "**Tuesday** 9-12 <script>alert(1)</script>",
	})
	require.NoError(t, err)
	assert.Contains(t, view.BodyHTML, "<strong>Tuesday</strong>")
	assert.NotContains(t, view.BodyHTML, "<script>")
	assert.Equal(t, 48*time.Hour, view.ExpiresAt.Sub(view.CreatedAt))
	assert.Nil(t, view.ImageURL)

	short, err := env.announcements.Create(ctx, admin, CreateAnnouncementInput{Title: "Short", Body: "b", ExpiresHours: -5})
	require.NoError(t, err)
	assert.Equal(t, time.Hour, short.ExpiresAt.Sub(short.CreatedAt))

	env.announcements.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	visible, err := env.announcements.List(ctx, resident)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, view.ID, visible[0].ID)

	public, err := env.announcements.ListPublic(ctx)
	require.NoError(t, err)
	assert.Len(t, public, 1)

	all, err := env.announcements.List(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	assert.Equal(t, []string{notify.AnnouncementCreated, notify.AnnouncementCreated}, env.pub.names())
}

func TestAnnouncementService_ImageAndDelete(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()
	admin := env.createUser(t, "Ada", "ada@example.com", models.RoleAdmin)

	view, err := env.announcements.Create(ctx, admin, CreateAnnouncementInput{
		Title: "Garden day",
		Body:  "Bring gloves",
		Image: &ImageUpload{Name: "poster.PNG", Reader: strings.NewReader("not really a png")},
	})
	require.NoError(t, err)
	require.NotNil(t, view.ImagePath)
	require.NotNil(t, view.ImageURL)
	assert.True(t, strings.HasPrefix(*view.ImageURL, "/uploads/"))
	assert.True(t, strings.HasSuffix(*view.ImagePath, ".png"))

	imageFile := filepath.Join(env.announcements.blobs.Dir(), *view.ImagePath)
	_, err = os.Stat(imageFile)
	require.NoError(t, err)

	_, err = env.announcements.Create(ctx, admin, CreateAnnouncementInput{
		Title: "Too big",
		Body:  "x",
		Image: &ImageUpload{Name: "big.jpg", Reader: bytes.NewReader(make([]byte, 2048))},
	})
	require.ErrorIs(t, err, ErrFileTooLarge)

	require.NoError(t, env.announcements.Delete(ctx, admin, view.ID))
	_, err = os.Stat(imageFile)
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, env.announcements.Delete(ctx, admin, 4242), "unknown ids are not an error")
	assert.Equal(t, int64(2), env.countAudit(t, models.AuditAnnouncementDelete))
}

func TestAttachmentService_Upload(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()
	resident := env.createUser(t, "Rita", "rita@example.com", models.RoleResident)
	ticket := env.fileTicket(t, resident, "Cracked tile")
	env.pub.reset()

	_, err := env.attachments.Upload(ctx, resident, ticket, "photo.jpg", nil)
	require.ErrorIs(t, err, ErrNoFile)

	_, err = env.attachments.Upload(ctx, resident, ticket, "huge.bin", bytes.NewReader(make([]byte, 1025)))
	require.ErrorIs(t, err, ErrFileTooLarge)

	attachment, err := env.attachments.Upload(ctx, resident, ticket, "notes.txt", strings.NewReader("hello there"))
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", attachment.OriginalName)
	assert.Equal(t, int64(11), attachment.Size)
	assert.True(t, strings.HasPrefix(attachment.Mime, "text/plain"))
	assert.Regexp(t, `^\d+-[0-9a-f]{16}\.txt$`, attachment.FileName)

	list, err := env.attachments.List(ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, attachment.ID, list[0].ID)

	entries, err := os.ReadDir(env.attachments.blobs.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 1, "rejected uploads leave no file behind")

	assert.Equal(t, []string{notify.AttachmentCreated}, env.pub.names())
	assert.Equal(t, int64(1), env.countAudit(t, models.AuditAttachmentUpload))
}
