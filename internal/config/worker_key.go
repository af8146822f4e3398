package config

type WorkerKeyStruct struct {
	PersistAccessAuditQueue string
}

var WorkerKey = &WorkerKeyStruct{
	PersistAccessAuditQueue: "persist_access_audit_queue",
}
