package triage

var hospitalSynonyms = map[string][]string{
	SymptomFever:               {"fever", "temperature", "hot", "chills"},
	SymptomCough:               {"cough", "coughing"},
	SymptomFatigue:             {"fatigue", "tired", "exhausted", "weak"},
	SymptomHeadache:            {"headache", "migraine"},
	SymptomBreathingDifficulty: {"breathless", "wheeze", "wheezing", "dyspnea", "dyspnoea"},
	SymptomChestPain:           {"chestpain", "angina", "tightness"},
}

var hospitalPhrases = []Phrase{
	{Symptom: SymptomBreathingDifficulty, Text: "shortness of breath"},
	{Symptom: SymptomBreathingDifficulty, Text: "trouble breathing"},
	{Symptom: SymptomChestPain, Text: "chest pain"},
	{Symptom: SymptomChestPain, Text: "chest tightness"},
	{Symptom: SymptomFever, Text: "high temperature"},
}

// basicSynonyms is the wider outpatient vocabulary. Generic words such as
// "pain", "head" or "up" are left out; they only match through phrases.
var basicSynonyms = map[string][]string{
	SymptomFever:               {"fever", "temperature", "hot", "chills", "feverish"},
	SymptomCough:               {"cough", "coughing"},
	SymptomFatigue:             {"fatigue", "tired", "exhausted", "weak"},
	SymptomHeadache:            {"headache", "migraine"},
	SymptomBreathingDifficulty: {"breathless", "wheeze", "wheezing", "dyspnea", "dyspnoea"},
	SymptomChestPain:           {"chestpain", "angina", "tightness"},
	SymptomSoreThroat:          {"pharyngitis"},
	SymptomNausea:              {"nausea", "nauseous", "queasy"},
	SymptomVomiting:            {"vomit", "vomiting", "vomited"},
	SymptomDiarrhea:            {"diarrhea", "diarrhoea"},
	SymptomBodyAches:           {"aches", "ache", "myalgia"},
	SymptomDizziness:           {"dizzy", "dizziness", "lightheaded"},
}

var basicPhrases = []Phrase{
	{Symptom: SymptomBreathingDifficulty, Text: "shortness of breath"},
	{Symptom: SymptomBreathingDifficulty, Text: "trouble breathing"},
	{Symptom: SymptomBreathingDifficulty, Text: "breathing hard"},
	{Symptom: SymptomChestPain, Text: "chest pain"},
	{Symptom: SymptomChestPain, Text: "chest tightness"},
	{Symptom: SymptomFever, Text: "high temperature"},
	{Symptom: SymptomHeadache, Text: "head pain"},
	{Symptom: SymptomSoreThroat, Text: "sore throat"},
	{Symptom: SymptomVomiting, Text: "throwing up"},
	{Symptom: SymptomDiarrhea, Text: "loose stool"},
	{Symptom: SymptomBodyAches, Text: "muscle pain"},
	{Symptom: SymptomBodyAches, Text: "body pain"},
}
