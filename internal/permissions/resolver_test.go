package permissions

import (
	"testing"

	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/models"
)

var (
	globalOwner = &models.User{ID: 1, Permission: models.PermissionOwner}
	alice       = &models.User{ID: 2, Permission: models.PermissionMember}
	bob         = &models.User{ID: 3, Permission: models.PermissionMember}
)

func TestComputeBasePermissions(t *testing.T) {
	if !ComputeBasePermissions(globalOwner).Has(PermAdministrator) {
		t.Error("global owner should have PermAdministrator")
	}
	if ComputeBasePermissions(alice) != 0 {
		t.Error("member should have no base permissions")
	}
	removed := &models.User{ID: 9, Permission: models.PermissionOwner, Removed: true}
	if ComputeBasePermissions(removed) != 0 {
		t.Error("removed user should have no permissions")
	}
	if ComputeBasePermissions(nil) != 0 {
		t.Error("nil user should have no permissions")
	}
}

func TestComputeChannelPermissions_PublicNonMember(t *testing.T) {
	ch := &models.Channel{ID: 1, IsPublic: true, AllMembers: []int64{2}, OwnerMembers: []int64{2}}
	perms := ComputeChannelPermissions(bob, ch)
	if !perms.Has(PermJoin) {
		t.Error("non-member should be able to join a public channel")
	}
	if perms.Has(PermViewConversation) || perms.Has(PermInvite) || perms.Has(PermLeave) {
		t.Errorf("non-member got member permissions: %s", perms)
	}
	if perms.Has(PermManageOwners) {
		t.Error("non-member should not manage owners")
	}
}

func TestComputeChannelPermissions_PrivateNonMember(t *testing.T) {
	ch := &models.Channel{ID: 1, IsPublic: false, AllMembers: []int64{2}, OwnerMembers: []int64{2}}
	if ComputeChannelPermissions(bob, ch).Has(PermJoin) {
		t.Error("member-level user should not join a private channel")
	}
	perms := ComputeChannelPermissions(globalOwner, ch)
	if !perms.Has(PermJoin) {
		t.Error("global owner should be able to join a private channel")
	}
	if !perms.Has(PermManageOwners) {
		t.Error("global owner should manage owners without membership")
	}
	if perms.Has(PermManageMessages) {
		t.Error("global owner must be a member to manage messages")
	}
}

func TestComputeChannelPermissions_Member(t *testing.T) {
	ch := &models.Channel{ID: 1, IsPublic: true, AllMembers: []int64{2, 3}, OwnerMembers: []int64{2}}
	perms := ComputeChannelPermissions(bob, ch)
	if !perms.Has(PermMember) {
		t.Errorf("member missing member permissions: %s", perms)
	}
	if perms.Has(PermJoin) {
		t.Error("member should not get PermJoin")
	}
	if perms.Has(PermManageOwners) || perms.Has(PermManageMessages) {
		t.Error("plain member should not manage the channel")
	}
}

func TestComputeChannelPermissions_ChannelOwner(t *testing.T) {
	ch := &models.Channel{ID: 1, AllMembers: []int64{2, 3}, OwnerMembers: []int64{2}}
	perms := ComputeChannelPermissions(alice, ch)
	if !perms.Has(PermManageOwners | PermManageMessages | PermMember) {
		t.Errorf("channel owner missing permissions: %s", perms)
	}
	if perms.Has(PermAdministrator) {
		t.Error("channel ownership must not grant PermAdministrator")
	}
}

func TestComputeChannelPermissions_GlobalOwnerMember(t *testing.T) {
	ch := &models.Channel{ID: 1, AllMembers: []int64{1, 2}, OwnerMembers: []int64{2}}
	perms := ComputeChannelPermissions(globalOwner, ch)
	if !perms.Has(PermManageMessages | PermManageOwners) {
		t.Errorf("global owner member should manage the channel: %s", perms)
	}
}

func TestComputeDMPermissions(t *testing.T) {
	dm := &models.DM{ID: 1, CreatorID: 2, Members: []int64{2, 3}}

	creator := ComputeDMPermissions(alice, dm)
	if !creator.Has(PermRemoveDM | PermManageMessages | PermViewConversation) {
		t.Errorf("creator missing permissions: %s", creator)
	}

	member := ComputeDMPermissions(bob, dm)
	if member.Has(PermRemoveDM) {
		t.Error("non-creator member should not remove the DM")
	}
	if !member.Has(PermSendMessages | PermLeave) {
		t.Errorf("member missing permissions: %s", member)
	}
	if member.Has(PermInvite) {
		t.Error("DM members cannot invite")
	}

	outsider := ComputeDMPermissions(globalOwner, dm)
	if outsider.Has(PermViewConversation) || outsider.Has(PermRemoveDM) {
		t.Error("global ownership should grant nothing inside a DM")
	}
}

func TestComputeDMPermissions_CreatorLeft(t *testing.T) {
	dm := &models.DM{ID: 1, CreatorID: 2, Members: []int64{3}}
	perms := ComputeDMPermissions(alice, dm)
	if !perms.Has(PermRemoveDM) {
		t.Error("creator keeps the right to remove the DM after leaving")
	}
	if perms.Has(PermViewConversation) || perms.Has(PermManageMessages) {
		t.Error("creator who left should not view or manage messages")
	}
}

func TestCanEditMessage(t *testing.T) {
	ch := &models.Channel{ID: 1, AllMembers: []int64{1, 2, 3}, OwnerMembers: []int64{2}}
	msg := &models.Message{ID: 10, AuthorID: 3}

	if !CanEditMessage(bob, ComputeChannelPermissions(bob, ch), msg) {
		t.Error("author should edit own message")
	}
	if !CanEditMessage(alice, ComputeChannelPermissions(alice, ch), msg) {
		t.Error("channel owner should edit others' messages")
	}
	if !CanEditMessage(globalOwner, ComputeChannelPermissions(globalOwner, ch), msg) {
		t.Error("global owner member should edit others' messages")
	}

	other := &models.Message{ID: 11, AuthorID: 2}
	if CanEditMessage(bob, ComputeChannelPermissions(bob, ch), other) {
		t.Error("plain member should not edit others' messages")
	}

	left := &models.Channel{ID: 2, AllMembers: []int64{2}, OwnerMembers: []int64{2}}
	if CanEditMessage(bob, ComputeChannelPermissions(bob, left), msg) {
		t.Error("author who left should not edit")
	}
}
