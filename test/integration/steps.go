package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cucumber/godog"
	"github.com/google/uuid"

	"github.com/shovel-heroes/shovel-heroes-go/pkg/authenticator/authn"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/model"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/permission"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/role"
	gormstore "github.com/shovel-heroes/shovel-heroes-go/pkg/server/store/gorm"
)

const testPassword = "correct-horse-battery"

// StepsContext holds state shared between the steps of one scenario.
// Users and grids are named by alias; the stored values carry a
// per-scenario suffix so scenarios never collide in the shared database.
type StepsContext struct {
	tc     *TestContext
	suffix string

	users  map[string]*model.User
	tokens map[string]string
	grids  map[string]*model.Grid

	token  string
	viewAs string

	response     *http.Response
	responseBody []byte

	// restore holds rules to put back once the scenario ends
	restore []permission.Rule
}

// NewStepsContext creates a new steps context
func NewStepsContext(tc *TestContext) *StepsContext {
	return &StepsContext{
		tc:     tc,
		suffix: uuid.NewString()[:8],
		users:  make(map[string]*model.User),
		tokens: make(map[string]string),
		grids:  make(map[string]*model.Grid),
	}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	sc.Step(`^the server is running$`, s.theServerIsRunning)
	sc.Step(`^a user "([^"]*)" with role "([^"]*)"$`, s.aUserWithRole)
	sc.Step(`^"([^"]*)" manages grid "([^"]*)"$`, s.managesGrid)
	sc.Step(`^"([^"]*)" pledged (\d+) "([^"]*)" to grid "([^"]*)" as donor "([^"]*)" with phone "([^"]*)"$`, s.pledged)
	sc.Step(`^"([^"]*)" volunteered for grid "([^"]*)" with phone "([^"]*)"$`, s.volunteered)

	sc.Step(`^I am signed in as "([^"]*)"$`, s.iAmSignedInAs)
	sc.Step(`^I am not signed in$`, s.iAmNotSignedIn)
	sc.Step(`^I view as "([^"]*)"$`, s.iViewAs)
	sc.Step(`^I send "([^"]*)" to "([^"]*)"$`, s.iSend)
	sc.Step(`^I send "([^"]*)" to "([^"]*)" with body:$`, s.iSendWithBody)
	sc.Step(`^"([^"]*)" sets "([^"]*)" of "([^"]*)" on "([^"]*)" to (true|false)$`, s.setsPermission)

	sc.Step(`^the response status should be (\d+)$`, s.theResponseStatusShouldBe)
	sc.Step(`^the response should list (\d+) items?$`, s.theResponseShouldList)
	sc.Step(`^the item "([^"]*)" should show "([^"]*)" as "([^"]*)"$`, s.theItemShouldShow)
	sc.Step(`^the item "([^"]*)" should not include "([^"]*)"$`, s.theItemShouldNotInclude)
	sc.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, s.theResponseFieldShouldBe)
	sc.Step(`^the response should not include "([^"]*)"$`, s.theResponseShouldNotInclude)

	s.registerSessionSteps(sc)

	sc.After(func(ctx context.Context, _ *godog.Scenario, err error) (context.Context, error) {
		return ctx, s.restorePermissions()
	})
}

func (s *StepsContext) theServerIsRunning() error {
	return nil
}

func (s *StepsContext) email(alias string) string {
	return fmt.Sprintf("%s-%s@example.org", alias, s.suffix)
}

func (s *StepsContext) aUserWithRole(alias, roleName string) error {
	r, err := role.RoleString(roleName)
	if err != nil {
		return err
	}
	hash, err := authn.HashPassword([]byte(testPassword))
	if err != nil {
		return err
	}
	user := &model.User{
		Email:        s.email(alias),
		DisplayName:  alias,
		PasswordHash: hash,
		Role:         r,
	}
	if err := gormstore.NewUsersStore(s.tc.DB).CreateUser(context.Background(), user); err != nil {
		return err
	}
	s.users[alias] = user
	return nil
}

func (s *StepsContext) managesGrid(alias, code string) error {
	user, ok := s.users[alias]
	if !ok {
		return fmt.Errorf("unknown user %q", alias)
	}
	contact := "0912-000-000"
	grid := &model.Grid{
		Code:        code + "-" + s.suffix,
		GridType:    model.GridTypeManpower,
		Status:      model.GridStatusOpen,
		ContactInfo: &contact,
		CreatedByID: user.ID,
	}
	if err := gormstore.NewGridsStore(s.tc.DB).CreateGrid(context.Background(), grid); err != nil {
		return err
	}
	s.grids[code] = grid
	return nil
}

func (s *StepsContext) pledged(alias string, quantity int, item, code, donor, phone string) error {
	body := map[string]interface{}{
		"name":        item,
		"quantity":    quantity,
		"donor_name":  donor,
		"donor_phone": phone,
	}
	return s.postAs(alias, "/grids/"+code+"/donations", body)
}

func (s *StepsContext) volunteered(alias, code, phone string) error {
	body := map[string]interface{}{
		"volunteer_name":  alias,
		"volunteer_phone": phone,
	}
	return s.postAs(alias, "/grids/"+code+"/volunteers", body)
}

func (s *StepsContext) postAs(alias, path string, body interface{}) error {
	previous, previousView := s.token, s.viewAs
	defer func() { s.token, s.viewAs = previous, previousView }()

	if err := s.iAmSignedInAs(alias); err != nil {
		return err
	}
	s.viewAs = ""
	if err := s.request("POST", path, body); err != nil {
		return err
	}
	return s.theResponseStatusShouldBe(http.StatusCreated)
}

func (s *StepsContext) iAmSignedInAs(alias string) error {
	if token, ok := s.tokens[alias]; ok {
		s.token = token
		return nil
	}

	s.token = ""
	err := s.request("POST", "/auth/login", map[string]string{
		"email":    s.email(alias),
		"password": testPassword,
	})
	if err != nil {
		return err
	}
	if s.response.StatusCode != http.StatusOK {
		return fmt.Errorf("login as %s failed with %d: %s", alias, s.response.StatusCode, s.responseBody)
	}

	var login struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(s.responseBody, &login); err != nil {
		return err
	}
	s.tokens[alias] = login.Token
	s.token = login.Token
	return nil
}

func (s *StepsContext) iAmNotSignedIn() error {
	s.token = ""
	s.viewAs = ""
	return nil
}

func (s *StepsContext) iViewAs(roleName string) error {
	s.viewAs = roleName
	return nil
}

func (s *StepsContext) iSend(method, path string) error {
	return s.request(method, path, nil)
}

func (s *StepsContext) iSendWithBody(method, path string, body *godog.DocString) error {
	return s.request(method, path, json.RawMessage(body.Content))
}

// expandPath replaces grid aliases written as {CODE} with stored ids.
func (s *StepsContext) expandPath(path string) string {
	for code, grid := range s.grids {
		path = strings.ReplaceAll(path, "{"+code+"}", grid.ID)
		path = strings.ReplaceAll(path, "/grids/"+code+"/", "/grids/"+grid.ID+"/")
	}
	for alias, user := range s.users {
		path = strings.ReplaceAll(path, "{"+alias+"}", user.ID)
	}
	return path
}

func (s *StepsContext) request(method, path string, body interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, s.tc.ServerURL+s.expandPath(path), reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	if s.viewAs != "" {
		req.Header.Set("X-View-As-Role", s.viewAs)
	}
	return s.do(req)
}

func (s *StepsContext) do(req *http.Request) error {
	resp, err := s.tc.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	s.response = resp
	s.responseBody, err = io.ReadAll(resp.Body)
	return err
}

func (s *StepsContext) setsPermission(alias, action, roleName, resource, allowed string) error {
	r, err := role.RoleString(roleName)
	if err != nil {
		return err
	}
	a, err := role.ActionString(action)
	if err != nil {
		return err
	}

	previous, previousView := s.token, s.viewAs
	defer func() { s.token, s.viewAs = previous, previousView }()
	if err := s.iAmSignedInAs(alias); err != nil {
		return err
	}
	s.viewAs = ""

	if err := s.request("GET", "/admin/permissions?role="+r.String(), nil); err != nil {
		return err
	}
	if s.response.StatusCode != http.StatusOK {
		return fmt.Errorf("reading permissions failed with %d: %s", s.response.StatusCode, s.responseBody)
	}
	var current struct {
		Permissions []permission.Rule `json:"permissions"`
	}
	if err := json.Unmarshal(s.responseBody, &current); err != nil {
		return err
	}

	// A missing rule denies everything, so an all-false rule restores it.
	updated := permission.Rule{Role: r, ResourceKey: resource}
	for _, rule := range current.Permissions {
		if rule.ResourceKey == resource {
			updated = rule
		}
	}
	if !s.restoring(r, resource) {
		s.restore = append(s.restore, updated)
	}
	updated = updated.With(a, allowed == "true")

	if err := s.request("PUT", "/admin/permissions", map[string]interface{}{
		"permissions": []permission.Rule{updated},
	}); err != nil {
		return err
	}
	return s.theResponseStatusShouldBe(http.StatusOK)
}

func (s *StepsContext) restoring(r role.Role, resource string) bool {
	for _, rule := range s.restore {
		if rule.Role == r && rule.ResourceKey == resource {
			return true
		}
	}
	return false
}

// restorePermissions puts back every rule a scenario changed, through the
// API so the server's cache is invalidated too.
func (s *StepsContext) restorePermissions() error {
	if len(s.restore) == 0 {
		return nil
	}
	var admin string
	for alias, user := range s.users {
		if user.Role == role.RoleSuperAdmin {
			admin = alias
		}
	}
	if admin == "" {
		return fmt.Errorf("no super_admin to restore permissions with")
	}

	s.viewAs = ""
	if err := s.iAmSignedInAs(admin); err != nil {
		return err
	}
	err := s.request("PUT", "/admin/permissions", map[string]interface{}{"permissions": s.restore})
	s.restore = nil
	if err != nil {
		return err
	}
	return s.theResponseStatusShouldBe(http.StatusOK)
}

// Response steps

func (s *StepsContext) theResponseStatusShouldBe(expectedStatus int) error {
	if s.response == nil {
		return fmt.Errorf("no request has been sent")
	}
	if s.response.StatusCode != expectedStatus {
		return fmt.Errorf("expected status %d, got %d: %s", expectedStatus, s.response.StatusCode, string(s.responseBody))
	}
	return nil
}

func (s *StepsContext) items() ([]map[string]interface{}, error) {
	var items []map[string]interface{}
	if err := json.Unmarshal(s.responseBody, &items); err != nil {
		return nil, fmt.Errorf("response is not a list: %w: %s", err, s.responseBody)
	}
	return items, nil
}

func (s *StepsContext) theResponseShouldList(n int) error {
	items, err := s.items()
	if err != nil {
		return err
	}
	if len(items) != n {
		return fmt.Errorf("expected %d items, got %d: %s", n, len(items), s.responseBody)
	}
	return nil
}

// item finds a list entry by its name, volunteer_name or code field.
func (s *StepsContext) item(label string) (map[string]interface{}, error) {
	items, err := s.items()
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		for _, key := range []string{"name", "volunteer_name", "code"} {
			v, _ := it[key].(string)
			if v == label || strings.TrimSuffix(v, "-"+s.suffix) == label {
				return it, nil
			}
		}
	}
	return nil, fmt.Errorf("no item %q in %s", label, s.responseBody)
}

func (s *StepsContext) theItemShouldShow(label, field, expected string) error {
	it, err := s.item(label)
	if err != nil {
		return err
	}
	actual, ok := it[field]
	if !ok {
		return fmt.Errorf("item %q has no %q field", label, field)
	}
	if fmt.Sprint(actual) != expected {
		return fmt.Errorf("expected %s of %q to be %q, got %q", field, label, expected, fmt.Sprint(actual))
	}
	return nil
}

func (s *StepsContext) theItemShouldNotInclude(label, field string) error {
	it, err := s.item(label)
	if err != nil {
		return err
	}
	if v, ok := it[field]; ok {
		return fmt.Errorf("item %q should not include %q, got %v", label, field, v)
	}
	return nil
}

func (s *StepsContext) theResponseFieldShouldBe(field, expected string) error {
	var body map[string]interface{}
	if err := json.Unmarshal(s.responseBody, &body); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if actual := fmt.Sprint(body[field]); actual != expected {
		return fmt.Errorf("expected %s to be %q, got %q", field, expected, actual)
	}
	return nil
}

func (s *StepsContext) theResponseShouldNotInclude(field string) error {
	var body map[string]interface{}
	if err := json.Unmarshal(s.responseBody, &body); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if v, ok := body[field]; ok {
		return fmt.Errorf("response should not include %q, got %v", field, v)
	}
	return nil
}
