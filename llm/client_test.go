package llm

import (
	"context"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/organarr/organarr/apiclient"
)

type fakeCompleter struct {
	lastReq   openai.ChatCompletionRequest
	resp      openai.ChatCompletionResponse
	err       error
	models    openai.ModelsList
	modelsErr error
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.lastReq = req
	return f.resp, f.err
}

func (f *fakeCompleter) ListModels(context.Context) (openai.ModelsList, error) {
	return f.models, f.modelsErr
}

func textResponse(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: content,
			}},
		},
	}
}

func newTestClient(fake *fakeCompleter) *Client {
	return &Client{
		api:         fake,
		model:       "deepseek-r1:8b",
		temperature: 0.2,
		maxTokens:   256,
		logger:      zerolog.Nop(),
	}
}

func TestCheckModel(t *testing.T) {
	fake := &fakeCompleter{models: openai.ModelsList{Models: []openai.Model{
		{ID: "llama2"},
		{ID: "deepseek-r1:8b"},
	}}}
	client := newTestClient(fake)

	ok, err := client.CheckModel(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	fake.models = openai.ModelsList{Models: []openai.Model{{ID: "llama2"}}}
	ok, err = client.CheckModel(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGenerateText(t *testing.T) {
	fake := &fakeCompleter{resp: textResponse("Walter White is a chemistry teacher.")}
	client := newTestClient(fake)

	text, err := client.GenerateText(context.Background(), "You are a critic.", "Describe Breaking Bad.")
	require.NoError(t, err)
	assert.Contains(t, text, "chemistry teacher")

	require.Len(t, fake.lastReq.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, fake.lastReq.Messages[0].Role)
	assert.Equal(t, "You are a critic.", fake.lastReq.Messages[0].Content)
	assert.Equal(t, openai.ChatMessageRoleUser, fake.lastReq.Messages[1].Role)
	assert.Equal(t, "deepseek-r1:8b", fake.lastReq.Model)
	assert.InDelta(t, 0.2, fake.lastReq.Temperature, 1e-6)
	assert.Equal(t, 256, fake.lastReq.MaxTokens)
}

func TestGenerateTextWithoutSystemPrompt(t *testing.T) {
	fake := &fakeCompleter{resp: textResponse("ok")}
	client := newTestClient(fake)

	_, err := client.GenerateText(context.Background(), "", "just the prompt")
	require.NoError(t, err)
	require.Len(t, fake.lastReq.Messages, 1)
	assert.Equal(t, openai.ChatMessageRoleUser, fake.lastReq.Messages[0].Role)
}

func TestGenerateTextNoChoices(t *testing.T) {
	fake := &fakeCompleter{resp: openai.ChatCompletionResponse{}}
	client := newTestClient(fake)

	_, err := client.GenerateText(context.Background(), "", "prompt")
	require.ErrorIs(t, err, ErrNoChoices)
}

func TestParseFilename(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "plain JSON",
			content: `{"title":"Breaking Bad","season":1,"episode":1,"quality":"HDTV","codec":"x264"}`,
		},
		{
			name: "fenced JSON",
			content: "```json\n" +
				`{"title":"Breaking Bad","season":1,"episode":1,"quality":"HDTV","codec":"x264"}` +
				"\n```",
		},
		{
			name:    "numbers as strings",
			content: `{"title":"Breaking Bad","season":"1","episode":"1","quality":"HDTV","codec":"x264"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeCompleter{resp: textResponse(tt.content)}
			client := newTestClient(fake)

			guess, err := client.ParseFilename(context.Background(), "BreakingBad.S01E01.HDTV.x264")
			require.NoError(t, err)
			assert.Equal(t, "Breaking Bad", guess.Title)
			assert.Equal(t, 1, guess.Season)
			assert.Equal(t, 1, guess.Episode)
			assert.Equal(t, "HDTV", guess.Quality)
			assert.Equal(t, "x264", guess.Codec)
			assert.True(t, guess.IsEpisode())

			assert.Contains(t, fake.lastReq.Messages[0].Content, "media file analyzer")
			assert.Contains(t, fake.lastReq.Messages[1].Content, "Extract information from this filename")
		})
	}
}

func TestParseFilenameMovie(t *testing.T) {
	fake := &fakeCompleter{resp: textResponse(
		`{"title":"Inception","year":2010,"quality":"1080p","codec":"x265","audio":"DTS"}`,
	)}
	client := newTestClient(fake)

	guess, err := client.ParseFilename(context.Background(), "Inception.2010.1080p.x265.DTS")
	require.NoError(t, err)
	assert.Equal(t, "Inception", guess.Title)
	assert.Equal(t, 2010, guess.Year)
	assert.Equal(t, "DTS", guess.Audio)
	assert.False(t, guess.IsEpisode())
}

func TestParseFilenameInvalidJSON(t *testing.T) {
	fake := &fakeCompleter{resp: textResponse("The file appears to be Breaking Bad season 1.")}
	client := newTestClient(fake)

	_, err := client.ParseFilename(context.Background(), "whatever.mkv")
	require.Error(t, err)
	assert.True(t, apiclient.HasKind(err, apiclient.KindParse))
	assert.True(t, apiclient.FromVendor(err, "llm"))
}

func TestSuggestFilename(t *testing.T) {
	fake := &fakeCompleter{resp: textResponse("  Breaking Bad (2008) - S01E01 - Pilot.mkv\n")}
	client := newTestClient(fake)

	name, err := client.SuggestFilename(context.Background(), "BreakingBad.S01E01.HDTV.x264.mkv")
	require.NoError(t, err)
	assert.Equal(t, "Breaking Bad (2008) - S01E01 - Pilot.mkv", name)
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{name: "rate limit", status: http.StatusTooManyRequests, check: apiclient.IsRateLimit},
		{name: "auth", status: http.StatusUnauthorized, check: apiclient.IsAuth},
		{name: "not found", status: http.StatusNotFound, check: apiclient.IsNotFound},
		{name: "server", status: http.StatusInternalServerError, check: func(err error) bool {
			return apiclient.HasKind(err, apiclient.KindServer)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeCompleter{err: &openai.APIError{
				HTTPStatusCode: tt.status,
				Message:        "upstream says no",
			}}
			client := newTestClient(fake)

			_, err := client.GenerateText(context.Background(), "", "prompt")
			require.Error(t, err)
			assert.True(t, tt.check(err))
			assert.True(t, apiclient.FromVendor(err, "llm"))
		})
	}
}

func TestFilenameGuessString(t *testing.T) {
	tests := []struct {
		guess FilenameGuess
		want  string
	}{
		{
			guess: FilenameGuess{Title: "Breaking Bad", Season: 1, Episode: 1, Quality: "HDTV", Codec: "x264"},
			want:  "Breaking Bad S01E01 HDTV x264",
		},
		{
			guess: FilenameGuess{Title: "Inception", Year: 2010, Quality: "1080p"},
			want:  "Inception (2010) 1080p",
		},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.guess.String())
	}
}
