package tasks

// DefineTasks registers all available tasks in r.
func DefineTasks(r *Registry) {
	r.Register(LogInfoTask.TaskID(), LogInfoTask.HandleExecution)
	r.Register(PurgeActivityTask.TaskID(), PurgeActivityTask.HandleExecution)
	r.Register(PurgeChatExchangesTask.TaskID(), PurgeChatExchangesTask.HandleExecution)
}
