package echoapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/edumedsolutions/edumed/core"
	"github.com/edumedsolutions/edumed/core/contact"
	"github.com/edumedsolutions/edumed/core/faq"
	"github.com/edumedsolutions/edumed/core/portal"
	"github.com/edumedsolutions/edumed/core/university"
	"github.com/edumedsolutions/edumed/core/user"
	"github.com/edumedsolutions/edumed/fs"
	"github.com/edumedsolutions/edumed/services/auth"
	"github.com/edumedsolutions/edumed/services/email"
	"github.com/edumedsolutions/edumed/services/ratelimit"
	"github.com/edumedsolutions/edumed/storage/database/inmem"
	"github.com/edumedsolutions/edumed/tests"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testApp struct {
	*Server
	conf   *core.Config
	db     *inmemdb.DB
	mailer *emailsvc.ConsoleService
	logger *testutil.Logger
}

func setup(t *testing.T, configure ...func(conf *core.Config)) testApp {
	t.Helper()
	conf := core.NewTestConfig()
	for _, fn := range configure {
		fn(conf)
	}
	logger := testutil.NewLogger(t)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.RegisterValidators(validate, translator)
	faq.RegisterValidators(validate, translator)
	contact.RegisterValidators(validate, translator)
	core.ParseEmailTemplates(appfs.Templates, appfs.EmailTemplatesDir, conf.FrontendBaseURL, true, logger)

	db := inmemdb.Open()
	store := inmemdb.NewGateway(db)
	auth := authsvc.NewLocalService(user.NewService(inmemdb.NewUserRepository(db)), validate, conf)
	mailer := emailsvc.NewConsoleServiceMock(conf, logger)

	server := NewServer(ServerDeps{
		Conf:       conf,
		Logger:     logger,
		Validate:   validate,
		Translator: translator,
		Sessions:   portal.NewSessions(auth, store, logger, conf.RemoteTimeout, conf.Server.JWTExpirationDelta),
		Directory:  university.NewDirectory(store, logger, conf.RemoteTimeout),
		ContactSvc: contact.NewService(store, mailer, conf, logger),
		Limiter:    ratelimit.NewMemoryLimiter(),
	})
	t.Cleanup(func() { _ = server.Close() })

	return testApp{Server: server, conf: conf, db: db, mailer: mailer, logger: logger}
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, app testApp, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

// signUp registers a student and returns the portal token.
func signUp(t *testing.T, app testApp, email, pwd string) authResponse {
	t.Helper()
	req, rec := newRequest(http.MethodPost, "/v1/auth/signup", marchallObj(t, user.NewUser{Email: email, Password: pwd}))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var res authResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.NotEmpty(t, res.Token)
	return res
}
