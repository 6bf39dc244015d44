// Package ir is the high-level input the backend lowers: classes, methods
// and their statement bodies, produced by a front end.
//
// Calls are Invocation nodes naming a MethodReference (owner class, member
// name, descriptor). The reference is the recognition key for intrinsics
// and the lookup key for ordinary callees.
package ir
