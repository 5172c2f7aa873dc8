// Package policy decides which actor may perform which administrative
// operation. Every function here is pure: callers load the actor and the
// target, ask for a Decision, and abort before any write when it denies.
//
// Role tiers, lowest to highest: user < provider < moderator < admin < super_admin.
// Admin-tier is {moderator, admin, super_admin}.
//
// Rules, in precedence order:
//
//  1. Unauthenticated or profile-less actors are denied.
//  2. Only admin-tier actors reach administrative operations.
//  3. Mutating an account whose current or requested role is admin-tier requires super_admin.
//  4. Moderators may not mutate accounts.
//  5. Moderators may not create/delete providers, create/update/delete services,
//     or create/delete categories.
//  6. Nobody deletes their own account or changes their own role.
//  7. Reject and arbitrary set-status transitions require admin or super_admin.
package policy
