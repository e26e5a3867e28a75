package aipsdk

import (
	"context"
	"strings"
)

// Face API v2 endpoints, relative to the base URL.
const (
	detectPath          = "/rest/2.0/face/v2/detect"
	matchPath           = "/rest/2.0/face/v2/match"
	identifyPath        = "/rest/2.0/face/v2/identify"
	verifyPath          = "/rest/2.0/face/v2/verify"
	userAddPath         = "/rest/2.0/face/v2/faceset/user/add"
	userUpdatePath      = "/rest/2.0/face/v2/faceset/user/update"
	userDeletePath      = "/rest/2.0/face/v2/faceset/user/delete"
	userGetPath         = "/rest/2.0/face/v2/faceset/user/get"
	groupListPath       = "/rest/2.0/face/v2/faceset/group/getlist"
	groupUsersPath      = "/rest/2.0/face/v2/faceset/group/getusers"
	groupAddUserPath    = "/rest/2.0/face/v2/faceset/group/adduser"
	groupDeleteUserPath = "/rest/2.0/face/v2/faceset/group/deleteuser"
)

// Images are base64-encoded strings throughout. Every method returns the
// decoded response body, or a Result holding only "error" when the call
// failed before the API could answer.

// ============================================================================
// Recognition
// ============================================================================

// Detect locates faces in image and returns their attributes.
func (c *Client) Detect(ctx context.Context, image string, opts Options) Result {
	return c.invoke(ctx, "detect", detectPath, map[string]string{
		"image": image,
	}, opts)
}

// Match compares the faces found in images pairwise.
func (c *Client) Match(ctx context.Context, images []string, opts Options) Result {
	return c.invoke(ctx, "match", matchPath, map[string]string{
		"images": strings.Join(images, ","),
	}, opts)
}

// IdentifyUser searches groupID for the users closest to the face in image.
func (c *Client) IdentifyUser(ctx context.Context, groupID, image string, opts Options) Result {
	return c.invoke(ctx, "identify", identifyPath, map[string]string{
		"group_id": groupID,
		"image":    image,
	}, opts)
}

// Verify checks whether the face in image belongs to uid within groupID.
func (c *Client) Verify(ctx context.Context, uid, groupID, image string, opts Options) Result {
	return c.invoke(ctx, "verify", verifyPath, map[string]string{
		"uid":      uid,
		"group_id": groupID,
		"image":    image,
	}, opts)
}

// ============================================================================
// Users
// ============================================================================

// AddUser registers the face in image for uid in groupID.
func (c *Client) AddUser(ctx context.Context, uid, userInfo, groupID, image string, opts Options) Result {
	return c.invoke(ctx, "user_add", userAddPath, map[string]string{
		"uid":       uid,
		"user_info": userInfo,
		"group_id":  groupID,
		"image":     image,
	}, opts)
}

// UpdateUser replaces the face and info registered for uid in groupID.
func (c *Client) UpdateUser(ctx context.Context, uid, userInfo, groupID, image string, opts Options) Result {
	return c.invoke(ctx, "user_update", userUpdatePath, map[string]string{
		"uid":       uid,
		"user_info": userInfo,
		"group_id":  groupID,
		"image":     image,
	}, opts)
}

// DeleteUser removes uid. Pass "group_id" in opts to remove it from one group only.
func (c *Client) DeleteUser(ctx context.Context, uid string, opts Options) Result {
	return c.invoke(ctx, "user_delete", userDeletePath, map[string]string{
		"uid": uid,
	}, opts)
}

// GetUser returns the info registered for uid.
func (c *Client) GetUser(ctx context.Context, uid string, opts Options) Result {
	return c.invoke(ctx, "user_get", userGetPath, map[string]string{
		"uid": uid,
	}, opts)
}

// ============================================================================
// Groups
// ============================================================================

// GroupList lists the application's groups. "start" and "end" in opts page the list.
func (c *Client) GroupList(ctx context.Context, opts Options) Result {
	return c.invoke(ctx, "group_list", groupListPath, map[string]string{}, opts)
}

// GroupGetUsers lists the users of groupID.
func (c *Client) GroupGetUsers(ctx context.Context, groupID string, opts Options) Result {
	return c.invoke(ctx, "group_users", groupUsersPath, map[string]string{
		"group_id": groupID,
	}, opts)
}

// GroupAddUser copies uid from srcGroupID into groupID.
func (c *Client) GroupAddUser(ctx context.Context, groupID, uid, srcGroupID string, opts Options) Result {
	return c.invoke(ctx, "group_add_user", groupAddUserPath, map[string]string{
		"group_id":     groupID,
		"uid":          uid,
		"src_group_id": srcGroupID,
	}, opts)
}

// GroupDeleteUser removes uid from groupID.
func (c *Client) GroupDeleteUser(ctx context.Context, groupID, uid string, opts Options) Result {
	return c.invoke(ctx, "group_delete_user", groupDeleteUserPath, map[string]string{
		"group_id": groupID,
		"uid":      uid,
	}, opts)
}
