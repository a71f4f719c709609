package reconcile

import "time"

type nopMetrics struct{}

func (nopMetrics) ObserveAudit(int, int)                       {}
func (nopMetrics) ObserveCommit(string, int, int, int)         {}
func (nopMetrics) ObserveMigration(string, int, int)           {}
func (nopMetrics) ObserveClassification(string, time.Duration) {}
