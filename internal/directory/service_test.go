package directory

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"inventory/api/internal/auth"
	"inventory/api/internal/fault"
	"inventory/api/internal/feed"
	"inventory/api/internal/models"
	"inventory/api/internal/provision"
	"inventory/api/internal/repository"
)

type fakeProfileStore struct {
	profiles map[string]models.Profile
}

func newFakeProfileStore() *fakeProfileStore {
	return &fakeProfileStore{profiles: map[string]models.Profile{
		"admin":  {ID: "admin", Email: "admin@x.com", Role: models.RoleAdmin, Active: true},
		"member": {ID: "member", Email: "member@x.com", Role: models.RoleMember, Active: true},
	}}
}

func (f *fakeProfileStore) GetByID(_ context.Context, id string) (models.Profile, error) {
	profile, ok := f.profiles[id]
	if !ok {
		return models.Profile{}, repository.ErrProfileNotFound
	}
	return profile, nil
}

func (f *fakeProfileStore) List(_ context.Context) ([]models.Profile, error) {
	out := make([]models.Profile, 0, len(f.profiles))
	for _, p := range f.profiles {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProfileStore) SetActive(_ context.Context, id string, active bool) error {
	p, ok := f.profiles[id]
	if !ok {
		return repository.ErrProfileNotFound
	}
	p.Active = active
	f.profiles[id] = p
	return nil
}

func (f *fakeProfileStore) SetRole(_ context.Context, id string, role models.Role) error {
	p, ok := f.profiles[id]
	if !ok {
		return repository.ErrProfileNotFound
	}
	p.Role = role
	f.profiles[id] = p
	return nil
}

func (f *fakeProfileStore) Delete(_ context.Context, id string) error {
	if _, ok := f.profiles[id]; !ok {
		return repository.ErrProfileNotFound
	}
	delete(f.profiles, id)
	return nil
}

type fakeProvisioner struct {
	result provision.Result
	err    error
	calls  []string
}

func (f *fakeProvisioner) Invite(_ context.Context, email string) (provision.Result, error) {
	f.calls = append(f.calls, email)
	return f.result, f.err
}

type recordingNotifier struct {
	events []feed.Entity
}

func (r *recordingNotifier) Notify(_ context.Context, entity feed.Entity) {
	r.events = append(r.events, entity)
}

type fixture struct {
	svc         *Service
	store       *fakeProfileStore
	provisioner *fakeProvisioner
	notify      *recordingNotifier
}

func newFixture() *fixture {
	store := newFakeProfileStore()
	provisioner := &fakeProvisioner{}
	notify := &recordingNotifier{}
	resolver := auth.NewResolver(store, zerolog.Nop())
	svc := NewService(store, resolver, provisioner, notify, zerolog.Nop())
	return &fixture{svc: svc, store: store, provisioner: provisioner, notify: notify}
}

func adminSession() *models.Session  { return &models.Session{UserID: "admin"} }
func memberSession() *models.Session { return &models.Session{UserID: "member"} }

func TestNonAdminRejectedEverywhere(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.svc.ListProfiles(ctx, memberSession()); fault.KindOf(err) != fault.KindAuthorization {
		t.Errorf("ListProfiles: expected authorization fault, got %v", err)
	}
	if err := f.svc.SetActive(ctx, memberSession(), "member", false); fault.KindOf(err) != fault.KindAuthorization {
		t.Errorf("SetActive: expected authorization fault, got %v", err)
	}
	if err := f.svc.SetRole(ctx, memberSession(), "member", models.RoleAdmin); fault.KindOf(err) != fault.KindAuthorization {
		t.Errorf("SetRole: expected authorization fault, got %v", err)
	}
	if err := f.svc.RemoveProfile(ctx, memberSession(), "member", true); fault.KindOf(err) != fault.KindAuthorization {
		t.Errorf("RemoveProfile: expected authorization fault, got %v", err)
	}
	if _, err := f.svc.Invite(ctx, memberSession(), "new@x.com"); fault.KindOf(err) != fault.KindAuthorization {
		t.Errorf("Invite: expected authorization fault, got %v", err)
	}
	if len(f.provisioner.calls) != 0 {
		t.Error("provisioner must not be reached without admin capability")
	}
}

func TestDeactivatedAdminRejected(t *testing.T) {
	f := newFixture()
	p := f.store.profiles["admin"]
	p.Active = false
	f.store.profiles["admin"] = p

	if _, err := f.svc.ListProfiles(context.Background(), adminSession()); fault.KindOf(err) != fault.KindAuthorization {
		t.Fatalf("inactive admin must be rejected, got %v", err)
	}
}

func TestSetActiveAndRole(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if err := f.svc.SetActive(ctx, adminSession(), "member", false); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	if f.store.profiles["member"].Active {
		t.Error("member should be inactive")
	}

	if err := f.svc.SetRole(ctx, adminSession(), "member", models.RoleAdmin); err != nil {
		t.Fatalf("SetRole: %v", err)
	}
	if f.store.profiles["member"].Role != models.RoleAdmin {
		t.Error("member should be admin now")
	}

	if err := f.svc.SetRole(ctx, adminSession(), "member", models.Role("owner")); fault.KindOf(err) != fault.KindValidation {
		t.Errorf("unknown role must be rejected, got %v", err)
	}

	if len(f.notify.events) != 2 {
		t.Errorf("expected 2 profile feed events, got %d", len(f.notify.events))
	}
}

func TestRemoveProfileRequiresConfirmation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	err := f.svc.RemoveProfile(ctx, adminSession(), "member", false)
	if !fault.IsConflict(err) {
		t.Fatalf("expected confirmation checkpoint, got %v", err)
	}
	if _, ok := f.store.profiles["member"]; !ok {
		t.Fatal("declined removal must leave the profile intact")
	}

	if err := f.svc.RemoveProfile(ctx, adminSession(), "member", true); err != nil {
		t.Fatalf("confirmed removal: %v", err)
	}
	if _, ok := f.store.profiles["member"]; ok {
		t.Fatal("profile should be gone")
	}
}

func TestInviteValidatesEmail(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Invite(context.Background(), adminSession(), "not-an-email")
	if fault.KindOf(err) != fault.KindValidation {
		t.Fatalf("expected validation fault, got %v", err)
	}
	if len(f.provisioner.calls) != 0 {
		t.Error("invalid email must abort before any I/O")
	}
}

func TestInviteNormalizesEmail(t *testing.T) {
	f := newFixture()
	f.provisioner.result = provision.Result{Message: "ok"}

	if _, err := f.svc.Invite(context.Background(), adminSession(), "  New@X.Com "); err != nil {
		t.Fatalf("Invite: %v", err)
	}
	if len(f.provisioner.calls) != 1 || f.provisioner.calls[0] != "new@x.com" {
		t.Errorf("email should be lowercased and trimmed, got %v", f.provisioner.calls)
	}
}

func TestInviteOutcomeClassesStayDistinct(t *testing.T) {
	cases := []struct {
		name string
		err  error
		kind provision.Kind
	}{
		{name: "transport failure", err: &provision.Error{Kind: provision.KindTransport, Message: "connection refused"}, kind: provision.KindTransport},
		{name: "never authenticated", err: &provision.Error{Kind: provision.KindNeverAuthenticated, Message: "user must log in once first"}, kind: provision.KindNeverAuthenticated},
		{name: "function error", err: &provision.Error{Kind: provision.KindFunction, Message: "quota exceeded"}, kind: provision.KindFunction},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			f.provisioner.err = tc.err

			_, err := f.svc.Invite(context.Background(), adminSession(), "new@x.com")
			if provision.KindOf(err) != tc.kind {
				t.Fatalf("expected kind %s, got %v", tc.kind, err)
			}
		})
	}
}

func TestInviteSuccessNotifiesProfiles(t *testing.T) {
	f := newFixture()
	f.provisioner.result = provision.Result{Message: "user promoted"}

	result, err := f.svc.Invite(context.Background(), adminSession(), "new@x.com")
	if err != nil {
		t.Fatalf("Invite: %v", err)
	}
	if result.Message != "user promoted" {
		t.Errorf("unexpected message %q", result.Message)
	}
	if len(f.notify.events) != 1 || f.notify.events[0] != feed.EntityProfiles {
		t.Errorf("expected one profiles event, got %v", f.notify.events)
	}
}

func TestInviteFailureDoesNotNotify(t *testing.T) {
	f := newFixture()
	f.provisioner.err = errors.New("boom")

	if _, err := f.svc.Invite(context.Background(), adminSession(), "new@x.com"); err == nil {
		t.Fatal("expected error")
	}
	if len(f.notify.events) != 0 {
		t.Error("failed invite must not publish a feed event")
	}
}
