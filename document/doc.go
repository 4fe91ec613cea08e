// Package document defines the document tree consumed by docstore and the
// traversal strategies that flatten a batch of trees into the nodes an
// operation works on.
package document
