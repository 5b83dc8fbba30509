package service

import (
	"context"
	"testing"

	"github.com/satvikmishra44/taskhub/ecode"
	"github.com/satvikmishra44/taskhub/internal/structs"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPromoteTwice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	bob := f.register(t, "Bob", "bob@x.com")

	v, err := f.svc.User.Promote(ctx, admin, bob.ID.Hex())
	if err != nil {
		t.Fatalf("Promote() error = %v", err)
	}
	if v.Role != structs.RoleAdmin {
		t.Errorf("Role = %q, want admin", v.Role)
	}
	if got := PromotedMessage(v); got != "Bob is now an admin" {
		t.Errorf("PromotedMessage() = %q", got)
	}

	_, err = f.svc.User.Promote(ctx, admin, bob.ID.Hex())
	wantCode(t, err, ecode.RequestErr)
	if ecode.MessageOf(err) != "user is already an admin" {
		t.Errorf("message = %q", ecode.MessageOf(err))
	}
}

func TestDemotionIsNeverPossible(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	bob := f.register(t, "Bob", "bob@x.com")
	if _, err := f.svc.User.Promote(ctx, admin, bob.ID.Hex()); err != nil {
		t.Fatalf("Promote() error = %v", err)
	}

	actors := []structs.Actor{admin, bob}
	targets := []string{admin.ID.Hex(), bob.ID.Hex(), primitive.NewObjectID().Hex()}
	for _, actor := range actors {
		for _, target := range targets {
			_, err := f.svc.User.ChangeRole(ctx, actor, target, &structs.ChangeRoleCommand{Role: structs.RoleUser})
			wantCode(t, err, ecode.AccessDenied)
		}
	}

	got, err := f.data.Users.FindByID(ctx, bob.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if got.Role != structs.RoleAdmin {
		t.Errorf("Role = %q, want admin", got.Role)
	}
}

func TestChangeRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	bob := f.register(t, "Bob", "bob@x.com")
	carol := f.register(t, "Carol", "carol@x.com")

	tests := []struct {
		name   string
		actor  structs.Actor
		target string
		role   structs.Role
		want   int
	}{
		{"unknown role fails closed", admin, bob.ID.Hex(), "superuser", ecode.RequestErr},
		{"missing role", admin, bob.ID.Hex(), "", ecode.RequestErr},
		{"non-admin cannot promote", carol, bob.ID.Hex(), structs.RoleAdmin, ecode.AccessDenied},
		{"missing target", admin, primitive.NewObjectID().Hex(), structs.RoleAdmin, ecode.NothingFound},
		{"malformed target", admin, "xyz", structs.RoleAdmin, ecode.RequestErr},
		{"promote", admin, bob.ID.Hex(), structs.RoleAdmin, ecode.OK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.User.ChangeRole(ctx, tt.actor, tt.target, &structs.ChangeRoleCommand{Role: tt.role})
			wantCode(t, err, tt.want)
		})
	}
}

func TestDeleteAdminFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	other := f.register(t, "Root", reservedEmail)

	for _, target := range []structs.Actor{admin, other} {
		err := f.svc.User.Delete(ctx, admin, target.ID.Hex())
		wantCode(t, err, ecode.AccessDenied)
		if _, err := f.data.Users.FindByID(ctx, target.ID); err != nil {
			t.Errorf("admin %s was removed: %v", target.Name, err)
		}
	}
}

func TestDeleteUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	bob := f.register(t, "Bob", "bob@x.com")
	carol := f.register(t, "Carol", "carol@x.com")
	task := f.createTask(t, admin, "T1", bob)

	err := f.svc.User.Delete(ctx, carol, bob.ID.Hex())
	wantCode(t, err, ecode.AccessDenied)

	if err := f.svc.User.Delete(ctx, admin, bob.ID.Hex()); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	err = f.svc.User.Delete(ctx, admin, bob.ID.Hex())
	wantCode(t, err, ecode.NothingFound)

	got, err := f.svc.Task.Get(ctx, admin, task.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.AssignedTo != "" || got.AssignedToName != structs.Unassigned {
		t.Errorf("task assignee = %q/%q, want unassigned", got.AssignedTo, got.AssignedToName)
	}
}

func TestDeleteUserRetriesUnassign(t *testing.T) {
	f, _, tasks := newFlakyFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	bob := f.register(t, "Bob", "bob@x.com")
	task := f.createTask(t, admin, "T1", bob)
	tasks.unassignFailures = 1

	if err := f.svc.User.Delete(ctx, admin, bob.ID.Hex()); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	got, err := f.svc.Task.Get(ctx, admin, task.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.AssignedTo != "" {
		t.Errorf("task still assigned to %q after retry", got.AssignedTo)
	}
}

func TestDeleteUserUnassignFails(t *testing.T) {
	f, _, tasks := newFlakyFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	bob := f.register(t, "Bob", "bob@x.com")
	task := f.createTask(t, admin, "T1", bob)
	tasks.unassignFailures = 2

	wantCode(t, f.svc.User.Delete(ctx, admin, bob.ID.Hex()), ecode.ServerErr)
	if _, err := f.data.Users.FindByID(ctx, bob.ID); err == nil {
		t.Error("user should already be deleted")
	}
	got, err := f.svc.Task.Get(ctx, admin, task.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.AssignedToName != structs.Unassigned {
		t.Errorf("assigned_to_name = %q, want %q", got.AssignedToName, structs.Unassigned)
	}
}

func TestListUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	bob := f.register(t, "Bob", "bob@x.com")
	f.register(t, "Carol", "carol@example.org")

	all, err := f.svc.User.List(ctx, admin, nil)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("len(List()) = %d, want 3", len(all))
	}

	names, err := f.svc.User.List(ctx, admin, &structs.UserFilter{NameOnly: true})
	if err != nil {
		t.Fatalf("List(name only) error = %v", err)
	}
	for _, v := range names {
		if v.Email != "" || v.Role != "" || v.TaskCount != nil {
			t.Errorf("name-only view leaked fields: %+v", v)
		}
	}

	filtered, err := f.svc.User.List(ctx, admin, &structs.UserFilter{Role: structs.RoleUser, Query: "X.COM"})
	if err != nil {
		t.Fatalf("List(filter) error = %v", err)
	}
	if len(filtered) != 1 || filtered[0].ID != bob.ID.Hex() {
		t.Errorf("List(filter) = %+v, want only Bob", filtered)
	}

	_, err = f.svc.User.List(ctx, admin, &structs.UserFilter{Role: "owner"})
	wantCode(t, err, ecode.RequestErr)

	_, err = f.svc.User.List(ctx, bob, nil)
	wantCode(t, err, ecode.AccessDenied)
}

func TestGetWithRecentTasks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	bob := f.register(t, "Bob", "bob@x.com")
	carol := f.register(t, "Carol", "carol@x.com")
	for _, title := range []string{"first", "second", "third"} {
		f.createTask(t, admin, title, bob)
	}
	f.createTask(t, admin, "carol's", carol)

	v, err := f.svc.User.GetWithRecentTasks(ctx, admin, bob.ID.Hex(), 2)
	if err != nil {
		t.Fatalf("GetWithRecentTasks() error = %v", err)
	}
	if len(v.Tasks) != 2 || v.Tasks[0].Title != "third" || v.Tasks[1].Title != "second" {
		t.Errorf("Tasks = %+v, want third, second", v.Tasks)
	}
	if v.TaskCount == nil || *v.TaskCount != 3 {
		t.Errorf("TaskCount = %v, want 3", v.TaskCount)
	}

	self, err := f.svc.User.GetWithRecentTasks(ctx, bob, bob.ID.Hex(), 0)
	if err != nil {
		t.Fatalf("GetWithRecentTasks(self) error = %v", err)
	}
	if len(self.Tasks) != 3 {
		t.Errorf("len(Tasks) = %d, want 3", len(self.Tasks))
	}

	_, err = f.svc.User.GetWithRecentTasks(ctx, bob, carol.ID.Hex(), 0)
	wantCode(t, err, ecode.AccessDenied)
}

func TestMe(t *testing.T) {
	f := newFixture(t)
	bob := f.register(t, "Bob", "bob@x.com")

	me, err := f.svc.User.Me(context.Background(), bob, 5)
	if err != nil {
		t.Fatalf("Me() error = %v", err)
	}
	if me.Tasks == nil || len(me.Tasks) != 0 {
		t.Errorf("Tasks = %v, want empty", me.Tasks)
	}
	want := []string{"task:view", "task:update-status", "task:view-own"}
	if len(me.Capabilities) != len(want) {
		t.Fatalf("Capabilities = %v, want %v", me.Capabilities, want)
	}
	for i := range want {
		if me.Capabilities[i] != want[i] {
			t.Errorf("Capabilities[%d] = %q, want %q", i, me.Capabilities[i], want[i])
		}
	}
}
