// elevate: a workflow tool for lifting aligned sequencing reads
// from one reference genome to another.
// Copyright (c) 2024 biolift bv.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/biolift/elevate/blob/master/LICENSE.txt>.

package workflow

// PathPlan names every artifact of a pipeline run. All paths derive
// from the output prefix through the single suffix table in
// DerivePathPlan; stages consume the plan instead of re-deriving
// names.
type PathPlan struct {
	Prefix string

	// Lift outputs.
	Committed       string
	CommittedSorted string
	Deferred        string

	// Paired-end branch.
	PairedPrefix         string
	PairedCommitted      string
	PairedDeferred       string
	PairedDeferredR1     string
	PairedDeferredR2     string
	PairedRealigned      string
	PairedRealignedSortN string
	PairedDeferredSortN  string
	PairedReconciled     string

	// Single-end branch.
	DeferredFastq string
	Realigned     string

	Final      string
	FinalIndex string
	TimeLog    string
}

// DerivePathPlan computes the artifact paths for an output prefix.
// Pure; performs no I/O.
func DerivePathPlan(outPrefix string) PathPlan {
	return PathPlan{
		Prefix: outPrefix,

		Committed:       outPrefix + "-committed.bam",
		CommittedSorted: outPrefix + "-committed-sorted.bam",
		Deferred:        outPrefix + "-deferred.bam",

		PairedPrefix:         outPrefix + "-paired",
		PairedCommitted:      outPrefix + "-paired-committed.bam",
		PairedDeferred:       outPrefix + "-paired-deferred.bam",
		PairedDeferredR1:     outPrefix + "-paired-deferred-R1.fq.gz",
		PairedDeferredR2:     outPrefix + "-paired-deferred-R2.fq.gz",
		PairedRealigned:      outPrefix + "-paired-realigned.bam",
		PairedRealignedSortN: outPrefix + "-paired-realigned-sorted_n.bam",
		PairedDeferredSortN:  outPrefix + "-paired-deferred-sorted_n.bam",
		PairedReconciled:     outPrefix + "-paired-deferred-reconciled-sorted.bam",

		DeferredFastq: outPrefix + "-deferred.fq.gz",
		Realigned:     outPrefix + "-realigned.bam",

		Final:      outPrefix + "-final.bam",
		FinalIndex: outPrefix + "-final.bam.bai",
		TimeLog:    outPrefix + ".time_log",
	}
}

// Artifacts returns every file path of the plan. The PairedPrefix is
// not listed; it names a prefix handed to the collate tool, not a
// file.
func (p PathPlan) Artifacts() []string {
	return []string{
		p.Committed,
		p.CommittedSorted,
		p.Deferred,
		p.PairedCommitted,
		p.PairedDeferred,
		p.PairedDeferredR1,
		p.PairedDeferredR2,
		p.PairedRealigned,
		p.PairedRealignedSortN,
		p.PairedDeferredSortN,
		p.PairedReconciled,
		p.DeferredFastq,
		p.Realigned,
		p.Final,
		p.FinalIndex,
		p.TimeLog,
	}
}

// Intermediates returns the artifacts a successful run no longer
// needs: everything except the final alignment, its index, and the
// time log.
func (p PathPlan) Intermediates() []string {
	keep := map[string]bool{
		p.Final:      true,
		p.FinalIndex: true,
		p.TimeLog:    true,
	}
	var files []string
	for _, file := range p.Artifacts() {
		if !keep[file] {
			files = append(files, file)
		}
	}
	return files
}
