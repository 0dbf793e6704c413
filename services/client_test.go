package services

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thesisportal/backend/database"
	"github.com/thesisportal/backend/models"
)

func TestHandleMessage_CreateCommentBroadcastsToAllSubscribers(t *testing.T) {
	setupTestDB(t)
	hub := setupTestHub(t)

	author := createTestUser(t, models.RoleUser)
	project := createTestProject(t, author, "Discussed project")

	sender := newTestClient(hub, author.ID, models.RoleUser)
	watcher := newTestClient(hub, "someone-else", models.RoleUser)
	hub.Register(sender)
	hub.Register(watcher)
	require.NoError(t, hub.Subscribe(sender, TopicComment))
	require.NoError(t, hub.Subscribe(watcher, TopicComment))

	frame := fmt.Sprintf(
		`{"type":"create-comment","payload":{"projectId":%q,"content":"hi","userId":%q}}`,
		project.ID, author.ID,
	)
	sender.handleMessage([]byte(frame))

	for _, client := range []*Client{sender, watcher} {
		msg := waitForMessage(t, client)
		require.Equal(t, "get-comments", msg.Type)

		var comments []CommentView
		require.NoError(t, json.Unmarshal(msg.Payload, &comments))
		require.Len(t, comments, 1)
		assert.Equal(t, "hi", comments[0].Content)
		assert.Equal(t, author.Summary(), comments[0].User)
	}
}

func TestHandleMessage_GetCommentsBroadcasts(t *testing.T) {
	setupTestDB(t)
	hub := setupTestHub(t)

	author := createTestUser(t, models.RoleUser)
	project := createTestProject(t, author, "Read project")
	require.NoError(t, CreateComment(CreateCommentInput{
		ProjectID: project.ID,
		UserID:    author.ID,
		Content:   "existing",
	}))

	client := newTestClient(hub, author.ID, models.RoleUser)
	hub.Register(client)
	require.NoError(t, hub.Subscribe(client, TopicComment))

	client.handleMessage([]byte(fmt.Sprintf(`{"type":"get-comments","payload":{"projectId":%q}}`, project.ID)))

	msg := waitForMessage(t, client)
	require.Equal(t, "get-comments", msg.Type)

	var comments []CommentView
	require.NoError(t, json.Unmarshal(msg.Payload, &comments))
	require.Len(t, comments, 1)
	assert.Equal(t, "existing", comments[0].Content)
}

func TestHandleMessage_GetProjectsBroadcastsToSubjectTopic(t *testing.T) {
	setupTestDB(t)
	hub := setupTestHub(t)

	author := createTestUser(t, models.RoleUser)
	createTestProject(t, author, "Own project")

	client := newTestClient(hub, author.ID, models.RoleUser)
	hub.Register(client)
	require.NoError(t, hub.Subscribe(client, ProjectsTopic(author.ID)))

	frame := fmt.Sprintf(
		`{"type":"get-projects","payload":{"userAuthId":%q,"userAuthRole":"user"}}`,
		author.ID,
	)
	client.handleMessage([]byte(frame))

	msg := waitForMessage(t, client)
	require.Equal(t, "get-projects", msg.Type)

	var projects []ProjectView
	require.NoError(t, json.Unmarshal(msg.Payload, &projects))
	require.Len(t, projects, 1)
	assert.Equal(t, "Own project", projects[0].Title)
	assert.False(t, projects[0].IsLikedByTheUserAuth)
}

func TestHandleMessage_CreateProjectInsertsWithoutBroadcast(t *testing.T) {
	setupTestDB(t)
	hub := setupTestHub(t)

	author := createTestUser(t, models.RoleUser)

	client := newTestClient(hub, author.ID, models.RoleUser)
	hub.Register(client)
	require.NoError(t, hub.Subscribe(client, ProjectsTopic(author.ID)))

	frame := fmt.Sprintf(
		`{"type":"create-project","payload":{"userAuthId":%q,"userAuthRole":"user","title":"Socket project","description":"d","urlPdf":"https://files.example.com/s.pdf"}}`,
		author.ID,
	)
	client.handleMessage([]byte(frame))

	var project models.ThesisProject
	require.NoError(t, database.DB.First(&project, "title = ?", "Socket project").Error)
	assert.Equal(t, models.StatusPending, project.Status)
	assert.Equal(t, author.ID, project.UserID)

	assertNoMessage(t, client)
}

func TestHandleMessage_LikeLifecycle(t *testing.T) {
	setupTestDB(t)
	hub := setupTestHub(t)

	liker := createTestUser(t, models.RoleUser)
	author := createTestUser(t, models.RoleUser)
	project := createTestProject(t, author, "Liked over socket")

	client := newTestClient(hub, liker.ID, models.RoleUser)

	like := fmt.Sprintf(`{"type":"create-user-like","payload":{"userId":%q,"projectId":%q}}`, liker.ID, project.ID)
	client.handleMessage([]byte(like))
	client.handleMessage([]byte(like))
	assert.EqualValues(t, 1, likeCount(t))

	unlike := fmt.Sprintf(`{"type":"delete-user-like","payload":{"userId":%q,"projectId":%q}}`, liker.ID, project.ID)
	client.handleMessage([]byte(unlike))
	assert.EqualValues(t, 0, likeCount(t))
}

func TestHandleMessage_MalformedFramesAreIgnored(t *testing.T) {
	setupTestDB(t)
	hub := setupTestHub(t)

	client := newTestClient(hub, "u1", models.RoleUser)
	hub.Register(client)
	require.NoError(t, hub.Subscribe(client, TopicComment))

	for _, frame := range []string{
		`not json`,
		`{"type":"create-comment","payload":{}}`,
		`{"type":"create-comment","payload":{"projectId":"p"}}`,
		`{"type":"get-comments","payload":{}}`,
		`{"type":"get-projects","payload":{"userAuthId":""}}`,
		`{"type":"no-such-type","payload":{}}`,
	} {
		client.handleMessage([]byte(frame))
	}

	var count int64
	require.NoError(t, database.DB.Model(&models.Comment{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)

	assertNoMessage(t, client)
}
