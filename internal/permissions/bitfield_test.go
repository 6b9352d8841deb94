package permissions

import "testing"

func TestHas(t *testing.T) {
	p := PermViewConversation | PermSendMessages
	if !p.Has(PermViewConversation) {
		t.Error("expected Has(PermViewConversation) to be true")
	}
	if !p.Has(PermViewConversation | PermSendMessages) {
		t.Error("expected Has to accept a subset made of several bits")
	}
	if p.Has(PermInvite) {
		t.Error("expected Has(PermInvite) to be false")
	}
	if p.Has(PermSendMessages | PermInvite) {
		t.Error("Has must require every bit of the argument")
	}
}

func TestAddRemove(t *testing.T) {
	var p Permission
	p = p.Add(PermJoin)
	if !p.Has(PermJoin) {
		t.Fatal("Add did not set PermJoin")
	}
	p = p.Add(PermLeave).Remove(PermJoin)
	if p.Has(PermJoin) {
		t.Error("Remove did not clear PermJoin")
	}
	if !p.Has(PermLeave) {
		t.Error("Remove cleared an unrelated bit")
	}
}

func TestPermMemberSet(t *testing.T) {
	for _, bit := range []Permission{PermViewConversation, PermSendMessages, PermInvite, PermLeave} {
		if !PermMember.Has(bit) {
			t.Errorf("PermMember missing %s", bit)
		}
	}
	if PermMember.Has(PermManageOwners) {
		t.Error("PermMember must not include PermManageOwners")
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		perm Permission
		want string
	}{
		{0, "NONE"},
		{PermJoin, "JOIN"},
		{PermViewConversation | PermLeave, "VIEW_CONVERSATION | LEAVE"},
		{PermAdministrator | PermSendMessages, "SEND_MESSAGES | ADMINISTRATOR"},
		{1 << 20, "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.perm.String(); got != tt.want {
			t.Errorf("Permission(%d).String() = %q, want %q", int64(tt.perm), got, tt.want)
		}
	}
}
