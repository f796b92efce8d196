package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/quillpress/internal/db"
	"github.com/quillpress/internal/slug"
	"github.com/quillpress/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestPostService_CreateDerivesSuffixedSlugs(t *testing.T) {
	gdb := setupServiceTestDB(t)
	f := createFixtures(t, gdb)
	svc := NewPostService(gdb, nil)

	first, err := svc.Create(f.postInput("Hello World"))
	require.NoError(t, err)
	second, err := svc.Create(f.postInput("Hello World"))
	require.NoError(t, err)
	third, err := svc.Create(f.postInput("hello   world"))
	require.NoError(t, err)

	assert.Equal(t, "hello-world", first.Slug)
	assert.Equal(t, "hello-world-1", second.Slug)
	assert.Equal(t, "hello-world-2", third.Slug)
	assert.Zero(t, first.ViewCount)
	assert.False(t, first.PublishedAt.IsZero())
	assert.Nil(t, first.ModifiedAt)
}

func TestPostService_CreateProvidedSlug(t *testing.T) {
	gdb := setupServiceTestDB(t)
	f := createFixtures(t, gdb)
	svc := NewPostService(gdb, nil)

	input := f.postInput("Anything")
	input.Slug = "Custom Slug"
	post, err := svc.Create(input)
	require.NoError(t, err)
	assert.Equal(t, "Custom Slug", post.Slug, "provided slugs are stored verbatim")

	dup := f.postInput("Other")
	dup.Slug = "Custom Slug"
	_, err = svc.Create(dup)
	assert.ErrorIs(t, err, ErrConflict)
	assert.ErrorIs(t, err, ErrSlugTaken)
}

func TestPostService_CreateLosesSlugRaceAtUniqueIndex(t *testing.T) {
	gdb := setupServiceTestDB(t)
	f := createFixtures(t, gdb)
	svc := NewPostService(gdb, nil)

	_, err := svc.Create(f.postInput("Hello World"))
	require.NoError(t, err)

	// 预检看不到并发写入者已提交的 slug。
	svc.slugLookup = func(*gorm.DB) slug.Lookup {
		return slug.LookupFunc(func(string, uint) (bool, error) { return false, nil })
	}

	_, err = svc.Create(f.postInput("Hello World"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflict)
	assert.ErrorIs(t, err, ErrSlugTaken)

	var count int64
	require.NoError(t, gdb.Model(&db.Post{}).Where("slug = ?", "hello-world").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestPostService_CreateRepeatsMaxLengthTitle(t *testing.T) {
	gdb := setupServiceTestDB(t)
	f := createFixtures(t, gdb)
	svc := NewPostService(gdb, nil)

	title := strings.Repeat("a", slug.MaxLength)
	first, err := svc.Create(f.postInput(title))
	require.NoError(t, err)
	second, err := svc.Create(f.postInput(title))
	require.NoError(t, err)

	assert.Equal(t, title, first.Slug)
	assert.Equal(t, strings.Repeat("a", slug.MaxLength-2)+"-1", second.Slug)
}

func TestPostService_CreateValidation(t *testing.T) {
	gdb := setupServiceTestDB(t)
	f := createFixtures(t, gdb)
	svc := NewPostService(gdb, nil)

	longMeta := strings.Repeat("m", 151)
	tests := []struct {
		name   string
		mutate func(*PostInput)
		field  string
	}{
		{name: "missing title", mutate: func(in *PostInput) { in.Title = "   " }, field: "title"},
		{name: "missing body", mutate: func(in *PostInput) { in.Body = "" }, field: "body"},
		{name: "missing author", mutate: func(in *PostInput) { in.AuthorID = 0 }, field: "authorId"},
		{name: "missing category", mutate: func(in *PostInput) { in.CategoryID = 0 }, field: "categoryId"},
		{name: "meta title too long", mutate: func(in *PostInput) {
			in.MetaTitle = &longMeta
		}, field: "metaTitle"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := f.postInput("Valid")
			tt.mutate(&input)

			_, err := svc.Create(input)
			require.ErrorIs(t, err, ErrValidation)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
}

func TestPostService_CreateMissingReferences(t *testing.T) {
	gdb := setupServiceTestDB(t)
	f := createFixtures(t, gdb)
	svc := NewPostService(gdb, nil)

	input := f.postInput("Orphan")
	input.AuthorID = 999
	_, err := svc.Create(input)
	assert.ErrorIs(t, err, ErrDependency)
	assert.ErrorIs(t, err, ErrAuthorMissing)

	input = f.postInput("Orphan")
	input.CategoryID = 999
	_, err = svc.Create(input)
	assert.ErrorIs(t, err, ErrCategoryMissing)

	var count int64
	gdb.Model(&db.Post{}).Count(&count)
	assert.Zero(t, count)
}

func TestPostService_CreateStoresImage(t *testing.T) {
	gdb := setupServiceTestDB(t)
	f := createFixtures(t, gdb)
	images := newMemoryImages()
	svc := NewPostService(gdb, images)

	input := f.postInput("With Image")
	input.Image = &ImageUpload{Data: []byte("png"), Name: "cover.png"}
	post, err := svc.Create(input)
	require.NoError(t, err)
	require.NotNil(t, post.FeaturedImage)
	assert.Contains(t, images.objects, *post.FeaturedImage)
}

func TestPostService_CreateReportsOrphanedImage(t *testing.T) {
	gdb := setupServiceTestDB(t)
	f := createFixtures(t, gdb)
	images := newMemoryImages()
	svc := NewPostService(gdb, images)

	input := f.postInput("Broken")
	input.AuthorID = 404
	input.Image = &ImageUpload{Data: []byte("png"), Name: "cover.png"}
	_, err := svc.Create(input)

	var partial *PartialFailureError
	require.True(t, errors.As(err, &partial), "expected partial failure, got %v", err)
	assert.Contains(t, images.objects, partial.Reference)
	assert.ErrorIs(t, err, ErrDependency)
}

func TestPostService_ImageStoreFailures(t *testing.T) {
	gdb := setupServiceTestDB(t)
	f := createFixtures(t, gdb)

	images := newMemoryImages()
	images.storeErr = errors.New("disk full")
	svc := NewPostService(gdb, images)

	input := f.postInput("Img")
	input.Image = &ImageUpload{Data: []byte("x"), Name: "a.png"}
	_, err := svc.Create(input)
	assert.ErrorIs(t, err, ErrStorage)

	local, err := storage.NewLocalStore(t.TempDir(), "/uploads", nil)
	require.NoError(t, err)
	svc = NewPostService(gdb, local)
	input.Image = &ImageUpload{Data: []byte("not an image"), Name: "a.exe"}
	_, err = svc.Create(input)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPostService_UpdateKeepsOwnSlugAndImage(t *testing.T) {
	gdb := setupServiceTestDB(t)
	f := createFixtures(t, gdb)
	images := newMemoryImages()
	svc := NewPostService(gdb, images)
	clock := newSteppingClock()
	svc.now = clock.Now

	input := f.postInput("Hello World")
	input.Image = &ImageUpload{Data: []byte("a"), Name: "a.png"}
	created, err := svc.Create(input)
	require.NoError(t, err)

	edit := f.postInput("Hello World")
	edit.Slug = created.Slug
	edit.Body = "edited"
	updated, err := svc.Update(created.ID, edit)
	require.NoError(t, err)
	assert.Equal(t, "hello-world", updated.Slug)
	assert.Equal(t, "edited", updated.Body)
	require.NotNil(t, updated.FeaturedImage)
	assert.Equal(t, *created.FeaturedImage, *updated.FeaturedImage, "image is kept without a new upload")
	require.NotNil(t, updated.ModifiedAt)
	assert.True(t, updated.PublishedAt.Equal(created.PublishedAt))

	rederived := f.postInput("Hello World")
	updated, err = svc.Update(created.ID, rederived)
	require.NoError(t, err)
	assert.Equal(t, "hello-world", updated.Slug, "derived slug excludes the post itself")

	replace := f.postInput("Hello World")
	replace.Image = &ImageUpload{Data: []byte("b"), Name: "b.png"}
	updated, err = svc.Update(created.ID, replace)
	require.NoError(t, err)
	assert.NotEqual(t, *created.FeaturedImage, *updated.FeaturedImage)
}

func TestPostService_UpdateSlugConflict(t *testing.T) {
	gdb := setupServiceTestDB(t)
	f := createFixtures(t, gdb)
	svc := NewPostService(gdb, nil)

	first, err := svc.Create(f.postInput("First"))
	require.NoError(t, err)
	second, err := svc.Create(f.postInput("Second"))
	require.NoError(t, err)

	edit := f.postInput("Second")
	edit.Slug = first.Slug
	_, err = svc.Update(second.ID, edit)
	assert.ErrorIs(t, err, ErrConflict)

	retitled := f.postInput("First")
	updated, err := svc.Update(second.ID, retitled)
	require.NoError(t, err)
	assert.Equal(t, "first-1", updated.Slug)
}

func TestPostService_UpdatePreservesViewCount(t *testing.T) {
	gdb := setupServiceTestDB(t)
	f := createFixtures(t, gdb)
	svc := NewPostService(gdb, nil)
	views := NewViewCounter(gdb)

	post, err := svc.Create(f.postInput("Counted"))
	require.NoError(t, err)
	require.NoError(t, views.RecordView(post.ID))
	require.NoError(t, views.RecordView(post.ID))

	updated, err := svc.Update(post.ID, f.postInput("Counted"))
	require.NoError(t, err)
	assert.EqualValues(t, 2, updated.ViewCount)
}

func TestPostService_UpdateMissingPost(t *testing.T) {
	gdb := setupServiceTestDB(t)
	f := createFixtures(t, gdb)
	images := newMemoryImages()
	svc := NewPostService(gdb, images)

	input := f.postInput("Ghost")
	input.Image = &ImageUpload{Data: []byte("a"), Name: "a.png"}
	_, err := svc.Update(42, input)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, images.objects, "no image is stored for a missing post")
}

func TestPostService_DeleteCascadesComments(t *testing.T) {
	gdb := setupServiceTestDB(t)
	f := createFixtures(t, gdb)
	svc := NewPostService(gdb, nil)
	comments := NewCommentService(gdb, nil)

	post, err := svc.Create(f.postInput("Doomed"))
	require.NoError(t, err)
	keeper, err := svc.Create(f.postInput("Keeper"))
	require.NoError(t, err)

	var ids []uint
	for i := 0; i < 3; i++ {
		c, err := comments.Create(post.ID, CommentInput{Name: "r", Email: "r@example.com", Text: "hi"})
		require.NoError(t, err)
		ids = append(ids, c.ID)
	}
	_, err = comments.Create(keeper.ID, CommentInput{Name: "r", Email: "r@example.com", Text: "stay"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(post.ID))

	var remaining int64
	gdb.Model(&db.Comment{}).Where("id IN ?", ids).Count(&remaining)
	assert.Zero(t, remaining)

	var others int64
	gdb.Model(&db.Comment{}).Where("post_id = ?", keeper.ID).Count(&others)
	assert.EqualValues(t, 1, others)

	_, err = svc.Get(post.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestPostService_DeleteMissing(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewPostService(gdb, nil)

	err := svc.Delete(7)
	assert.ErrorIs(t, err, ErrNotFound)
}
