package procedures

// ClassifierTrain trains a classifier and exposes it as a function named FunctionName.
type ClassifierTrain struct {
	TrainingData  string         `json:"trainingData"`
	Algorithm     string         `json:"algorithm"`
	Configuration map[string]any `json:"configuration"`
	Mode          string         `json:"mode"`
	ModelFileURL  string         `json:"modelFileUrl"`
	FunctionName  string         `json:"functionName"`
	RunOnCreation bool           `json:"runOnCreation"`
}

func (ct ClassifierTrain) Procedure() Procedure {
	return Procedure{Type: TypeClassifierTrain, Params: ct}
}

// ClassifierTest evaluates scores against labels.
//
// TestingData should yield columns "score" and "label".
type ClassifierTest struct {
	TestingData   string         `json:"testingData"`
	Mode          string         `json:"mode,omitempty"`
	OutputDataset *OutputDataset `json:"outputDataset,omitempty"`
	RunOnCreation bool           `json:"runOnCreation"`
}

func (ct ClassifierTest) Procedure() Procedure {
	if ct.OutputDataset != nil {
		o := ct.OutputDataset.Normalize()
		ct.OutputDataset = &o
	}
	return Procedure{Type: TypeClassifierTest, Params: ct}
}

// ClassifierExperiment trains and tests a classifier over k folds.
type ClassifierExperiment struct {
	ExperimentName        string         `json:"experimentName"`
	TrainingData          string         `json:"trainingData"`
	KFold                 int            `json:"kfold"`
	ModelFileURLPattern   string         `json:"modelFileUrlPattern"`
	Algorithm             string         `json:"algorithm"`
	Configuration         map[string]any `json:"configuration"`
	Mode                  string         `json:"mode"`
	OutputAccuracyDataset bool           `json:"outputAccuracyDataset"`
	RunOnCreation         bool           `json:"runOnCreation"`
}

func (ce ClassifierExperiment) Procedure() Procedure {
	return Procedure{Type: TypeClassifierExperiment, Params: ce}
}
