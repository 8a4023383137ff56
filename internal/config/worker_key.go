package config

type WorkerKeyStruct struct {
	PersistEssaysQueue string
}

var WorkerKey = &WorkerKeyStruct{
	PersistEssaysQueue: "persist_essays_queue",
}
