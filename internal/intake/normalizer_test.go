package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/intake-engine/internal/domain"
)

func TestRegistry_Normalize_WebForm(t *testing.T) {
	r := NewRegistry(nil)
	raw := []byte(`{
		"title": "Laptop screen flickers",
		"description": "My laptop screen flickers since this morning",
		"user_id": "u-42",
		"email": "jane@example.com",
		"name": "Jane",
		"location": "Building 3",
		"asset_tag": "LT-0042",
		"category": "Hardware",
		"attachments": [{"filename": "photo.jpg", "path": "/tmp/photo.jpg", "size": 1024}]
	}`)

	in, err := r.Normalize(domain.SourceWebForm, raw)
	require.NoError(t, err)

	assert.Equal(t, domain.SourceWebForm, in.Source)
	assert.Equal(t, "Laptop screen flickers", in.Title)
	assert.Equal(t, "u-42", in.RequesterID)
	assert.Equal(t, "Building 3", in.Location)
	assert.Equal(t, "LT-0042", in.AssetTag)
	require.NotNil(t, in.ExternalCategory)
	assert.Equal(t, domain.CategoryHardware, *in.ExternalCategory)
	require.Len(t, in.Attachments, 1)
	assert.Equal(t, domain.DefaultMimeType, in.Attachments[0].ContentType)
}

func TestRegistry_Normalize_EmailDefaults(t *testing.T) {
	r := NewRegistry(nil)
	raw := []byte(`{"subject": "", "body": "Outlook keeps asking for my password", "message_id": "<abc@mail>"}`)

	in, err := r.Normalize(domain.SourceEmail, raw)
	require.NoError(t, err)

	assert.Equal(t, domain.UnknownUserName, in.RequesterName)
	assert.Equal(t, domain.UnknownUserEmail, in.RequesterEmail)
	assert.Equal(t, domain.UnknownUserID, in.RequesterID)
	assert.Equal(t, "<abc@mail>", in.SourceReference)
	assert.Equal(t, "Outlook keeps asking for my password", in.Title)
	assert.NotNil(t, in.Attachments)
}

func TestRegistry_Normalize_EmailRequesterIsSender(t *testing.T) {
	r := NewRegistry(nil)
	raw := []byte(`{"subject": "Quota", "body": "Mailbox full", "from": {"email": "bob@example.com", "name": "Bob"}}`)

	in, err := r.Normalize(domain.SourceEmail, raw)
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", in.RequesterID)
	assert.Equal(t, "Bob", in.RequesterName)
}

func TestRegistry_Normalize_GLPI(t *testing.T) {
	r := NewRegistry(nil)
	raw := []byte(`{
		"id": 1234,
		"name": "Switch down on floor 2",
		"content": "All ports on the floor 2 switch are dark",
		"priority": 5,
		"_users_id_recipient": {"id": 7, "email": "ops@example.com", "name": "Ops"},
		"itilcategories_id": {"name": "Networking > Switches"},
		"documents": [{"filename": "diag.txt", "filepath": "/docs/diag.txt", "filesize": 10, "mime": "text/plain"}]
	}`)

	in, err := r.Normalize(domain.SourceGLPI, raw)
	require.NoError(t, err)

	assert.Equal(t, "1234", in.SourceReference)
	assert.Equal(t, "7", in.RequesterID)
	require.NotNil(t, in.ExternalPriority)
	assert.Equal(t, domain.PriorityUrgent, *in.ExternalPriority)
	require.NotNil(t, in.ExternalCategory)
	assert.Equal(t, domain.CategoryNetwork, *in.ExternalCategory)
	require.Len(t, in.Attachments, 1)
	assert.Equal(t, "text/plain", in.Attachments[0].ContentType)
}

func TestRegistry_Normalize_GLPIUnexpandedDropdowns(t *testing.T) {
	r := NewRegistry(nil)

	tests := []struct {
		name          string
		raw           string
		requesterID   string
		requesterMail string
	}{
		{
			name:          "numeric category id",
			raw:           `{"id": 9, "content": "Cannot print", "itilcategories_id": 12}`,
			requesterID:   domain.UnknownUserID,
			requesterMail: domain.UnknownUserEmail,
		},
		{
			name:          "numeric recipient id",
			raw:           `{"id": 9, "content": "Cannot print", "_users_id_recipient": 7}`,
			requesterID:   "7",
			requesterMail: domain.UnknownUserEmail,
		},
		{
			name:          "string ids and null category",
			raw:           `{"id": "9", "content": "Cannot print", "priority": "4", "_users_id_recipient": "7", "itilcategories_id": null}`,
			requesterID:   "7",
			requesterMail: domain.UnknownUserEmail,
		},
		{
			name:          "unexpected array shape",
			raw:           `{"id": 9, "content": "Cannot print", "_users_id_recipient": [1, 2], "itilcategories_id": {"name": ["x"]}}`,
			requesterID:   domain.UnknownUserID,
			requesterMail: domain.UnknownUserEmail,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := r.Normalize(domain.SourceGLPI, []byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, "9", in.SourceReference)
			assert.Equal(t, "Cannot print", in.Body)
			assert.Equal(t, tt.requesterID, in.RequesterID)
			assert.Equal(t, tt.requesterMail, in.RequesterEmail)
			assert.Nil(t, in.ExternalCategory)
		})
	}
}

func TestGLPIPriority(t *testing.T) {
	tests := []struct {
		raw   string
		want  domain.Priority
		known bool
	}{
		{"1", domain.PriorityLow, true},
		{"2", domain.PriorityLow, true},
		{"3", domain.PriorityMedium, true},
		{"4", domain.PriorityHigh, true},
		{"5", domain.PriorityUrgent, true},
		{"6", domain.PriorityCritical, true},
		{"9", domain.PriorityMedium, false},
		{"high", domain.PriorityMedium, false},
	}
	for _, tt := range tests {
		got, known := GLPIPriority(tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
		assert.Equal(t, tt.known, known, tt.raw)
	}
}

func TestRegistry_Normalize_Solman(t *testing.T) {
	r := NewRegistry(nil)
	raw := []byte(`{
		"IncidentID": "8000001234",
		"ShortText": "VA01 dumps",
		"Description": "Transaction VA01 short dumps when saving",
		"Priority": "Very High",
		"ReporterID": "SAPUSER1",
		"Category": "Application error",
		"Attachments": [{"FileName": "dump.txt", "FilePath": "/x/dump.txt", "FileSize": 99}]
	}`)

	in, err := r.Normalize(domain.SourceSolman, raw)
	require.NoError(t, err)

	assert.Equal(t, "8000001234", in.SourceReference)
	assert.Equal(t, "SAPUSER1", in.RequesterID)
	assert.Equal(t, domain.UnknownUserEmail, in.RequesterEmail)
	require.NotNil(t, in.ExternalPriority)
	assert.Equal(t, domain.PriorityCritical, *in.ExternalPriority)
	require.NotNil(t, in.ExternalCategory)
	assert.Equal(t, domain.CategorySoftware, *in.ExternalCategory)
	require.Len(t, in.Attachments, 1)
	assert.Equal(t, domain.DefaultMimeType, in.Attachments[0].ContentType)
}

func TestSolmanPriority_Unknown(t *testing.T) {
	got, known := SolmanPriority("whenever")
	assert.Equal(t, domain.PriorityMedium, got)
	assert.False(t, known)
}

func TestRegistry_Normalize_ChatTitleTruncated(t *testing.T) {
	r := NewRegistry(nil)
	long := make([]byte, 150)
	for i := range long {
		long[i] = 'a'
	}
	raw := []byte(`{"message": "` + string(long) + `", "user_id": "u1", "context": {"location": "HQ"}}`)

	in, err := r.Normalize(domain.SourceChat, raw)
	require.NoError(t, err)
	assert.Len(t, in.Title, 100)
	assert.Equal(t, "HQ", in.Location)
	assert.Equal(t, domain.SourceChat, in.Source)
}

func TestRegistry_Normalize_ChatContextShapes(t *testing.T) {
	r := NewRegistry(nil)

	tests := []struct {
		name    string
		context string
		want    map[string]string
	}{
		{name: "scalars are stringified", context: `{"role": "engineer", "floor": 3, "vip": true, "location": "HQ"}`,
			want: map[string]string{"role": "engineer", "floor": "3", "vip": "true", "location": "HQ"}},
		{name: "nested values are dropped", context: `{"role": "engineer", "device": {"os": "mac"}, "tags": ["a"], "seat": null}`,
			want: map[string]string{"role": "engineer"}},
		{name: "non-object context", context: `"from the portal"`},
		{name: "null context", context: `null`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := []byte(`{"message": "my printer jams", "context": ` + tt.context + `}`)
			in, err := r.Normalize(domain.SourceChat, raw)
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, in.Context)
				return
			}
			assert.Equal(t, tt.want, in.Context)
			assert.Equal(t, tt.want["location"], in.Location)
		})
	}
}

func TestRegistry_Normalize_Errors(t *testing.T) {
	r := NewRegistry(nil)

	_, err := r.Normalize(domain.SourceWebForm, []byte(`{"title": "no body"}`))
	assert.ErrorIs(t, err, ErrEmptyBody)

	_, err = r.Normalize(domain.SourceEmail, []byte(`not json`))
	assert.ErrorIs(t, err, ErrMalformedPayload)

	_, err = r.Normalize(domain.Source("fax"), []byte(`{}`))
	assert.ErrorIs(t, err, ErrUnknownSource)
}

func TestAdapters_ReportSource(t *testing.T) {
	adapters := []Normalizer{WebFormAdapter{}, EmailAdapter{}, GLPIAdapter{}, SolmanAdapter{}, ChatAdapter{}}
	want := []domain.Source{domain.SourceWebForm, domain.SourceEmail, domain.SourceGLPI, domain.SourceSolman, domain.SourceChat}
	for i, a := range adapters {
		assert.Equal(t, want[i], a.Source())
	}
}
