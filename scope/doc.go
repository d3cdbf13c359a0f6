// Package scope derives row-level visibility filters from a principal's
// configured data scope. The resolver is stateless and performs no caching:
// org membership changes must be visible immediately, and resolution is
// cheap relative to permission resolution. Org-tree traversal is delegated
// to the [OrgQuery] collaborator.
package scope
