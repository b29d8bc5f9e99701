// Copyright 2017 Aleksandr Demakin. All rights reserved.

//go:build !qportdebug
// +build !qportdebug

package qport

// checkStateConsistency is compiled out unless the qportdebug tag is set.
func checkStateConsistency(head, tail uint64, capacity int) {}
