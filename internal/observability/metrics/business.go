package metrics

// RecordArticleSubmitted records a newly submitted pending article.
func RecordArticleSubmitted() {
	ArticlesSubmittedTotal.Inc()
}

// RecordApproval records an approve call.
// transitioned is false when the article was already approved.
func RecordApproval(transitioned bool) {
	result := "approved"
	if !transitioned {
		result = "already_approved"
	}
	ArticlesApprovedTotal.WithLabelValues(result).Inc()
}

// RecordVisibility records one visibility resolution and its result size.
// path is anonymous, reader, editor, journalist or unknown.
func RecordVisibility(path string, count int) {
	VisibilityResolutionsTotal.WithLabelValues(path).Inc()
	VisibleArticles.WithLabelValues(path).Observe(float64(count))
}

// RecordRoleTransition records a persisted role change. Re-saving the same role is not a transition.
func RecordRoleTransition(from, to string) {
	if from == to {
		return
	}
	RoleTransitionsTotal.WithLabelValues(from, to).Inc()
}

// RecordSubscriptionChange records a subscribe or unsubscribe call.
// kind is publisher or journalist; action is subscribe or unsubscribe.
func RecordSubscriptionChange(kind, action string) {
	SubscriptionChangesTotal.WithLabelValues(kind, action).Inc()
}

// RecordOutboxSweep records the backlog found by a sweep and how many events were re-published.
func RecordOutboxSweep(backlog, republished int) {
	OutboxBacklog.Set(float64(backlog))
	OutboxRedeliveredTotal.Add(float64(republished))
}
