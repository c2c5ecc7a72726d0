package plan

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/youwenshao/staffroom/core"
)

// Bilingual (EN/zh) plan forms. The field set mirrors the paper PESH
// lesson/unit forms; all values are free text and the assembled document is
// stored opaquely, so new fields never need a migration.

type LessonForm struct {
	// English fields
	TeacherName   string `json:"teacher_name" form:"teacher_name"`
	PeshYear      string `json:"pesh_year" form:"pesh_year"`
	Date          string `json:"date" form:"date"`
	ClassDuration string `json:"class_duration" form:"class_duration"`
	StartTime     string `json:"start_time" form:"start_time"`
	EndTime       string `json:"end_time" form:"end_time"`
	SchoolName    string `json:"school_name" form:"school_name"`
	Year          string `json:"year" form:"year"`
	ClassID       string `json:"class_id" form:"class_id"`
	ClassLevel    string `json:"class_level" form:"class_level"`
	ClassSize     string `json:"class_size" form:"class_size"`
	Boys          string `json:"boys" form:"boys"`
	Girls         string `json:"girls" form:"girls"`
	Topic         string `json:"topic" form:"topic"`
	UnitDuration  string `json:"unit_duration" form:"unit_duration"`
	DayOfUnit     string `json:"day_of_unit" form:"day_of_unit"`
	LessonTheme   string `json:"lesson_theme" form:"lesson_theme"`
	AbilityLevel  string `json:"ability_level" form:"ability_level"`

	PsychomotorObjs string `json:"psychomotor_objs" form:"psychomotor_objs"`
	CognitiveObjs   string `json:"cognitive_objs" form:"cognitive_objs"`
	AffectiveObjs   string `json:"affective_objs" form:"affective_objs"`
	Venue           string `json:"venue" form:"venue"`
	Equipment       string `json:"equipment" form:"equipment"`
	SafetyConcerns  string `json:"safety_concerns" form:"safety_concerns"`

	// Lesson sections: introduction, skill development, application,
	// concluding activity. Diagrams are set after upload (object URL or
	// inline data URI).
	IntroTime      string `json:"intro_time" form:"intro_time"`
	IntroCues      string `json:"intro_cues" form:"intro_cues"`
	IntroEquipment string `json:"intro_equipment" form:"intro_equipment"`
	IntroDiagram   string `json:"intro_diagram" form:"-"`
	SDTime         string `json:"sd_time" form:"sd_time"`
	SDCues         string `json:"sd_cues" form:"sd_cues"`
	SDEquipment    string `json:"sd_equipment" form:"sd_equipment"`
	SDDiagram      string `json:"sd_diagram" form:"-"`
	AppliTime      string `json:"appli_time" form:"appli_time"`
	AppliCues      string `json:"appli_cues" form:"appli_cues"`
	AppliEquipment string `json:"appli_equipment" form:"appli_equipment"`
	AppliDiagram   string `json:"appli_diagram" form:"-"`
	CATime         string `json:"ca_time" form:"ca_time"`
	CACues         string `json:"ca_cues" form:"ca_cues"`
	CAEquipment    string `json:"ca_equipment" form:"ca_equipment"`
	CADiagram      string `json:"ca_diagram" form:"-"`

	FollowupActions string `json:"followup_actions" form:"followup_actions"`
	SelfReflection  string `json:"self_reflection" form:"self_reflection"`

	// Chinese fields
	TeacherNameZh      string `json:"teacher_name_zh" form:"teacher_name_zh"`
	SchoolNameZh       string `json:"school_name_zh" form:"school_name_zh"`
	ClassIDZh          string `json:"class_id_zh" form:"class_id_zh"`
	ClassLevelZh       string `json:"class_level_zh" form:"class_level_zh"`
	TopicZh            string `json:"topic_zh" form:"topic_zh"`
	LessonThemeZh      string `json:"lesson_theme_zh" form:"lesson_theme_zh"`
	PsychomotorObjsZh  string `json:"psychomotor_objs_zh" form:"psychomotor_objs_zh"`
	CognitiveObjsZh    string `json:"cognitive_objs_zh" form:"cognitive_objs_zh"`
	AffectiveObjsZh    string `json:"affective_objs_zh" form:"affective_objs_zh"`
	VenueZh            string `json:"venue_zh" form:"venue_zh"`
	EquipmentZh        string `json:"equipment_zh" form:"equipment_zh"`
	SafetyConcernsZh   string `json:"safety_concerns_zh" form:"safety_concerns_zh"`
	IntroCuesZh        string `json:"intro_cues_zh" form:"intro_cues_zh"`
	IntroEquipmentZh   string `json:"intro_equipment_zh" form:"intro_equipment_zh"`
	SDCuesZh           string `json:"sd_cues_zh" form:"sd_cues_zh"`
	SDEquipmentZh      string `json:"sd_equipment_zh" form:"sd_equipment_zh"`
	AppliCuesZh        string `json:"appli_cues_zh" form:"appli_cues_zh"`
	AppliEquipmentZh   string `json:"appli_equipment_zh" form:"appli_equipment_zh"`
	CACuesZh           string `json:"ca_cues_zh" form:"ca_cues_zh"`
	CAEquipmentZh      string `json:"ca_equipment_zh" form:"ca_equipment_zh"`
	FollowupActionsZh  string `json:"followup_actions_zh" form:"followup_actions_zh"`
	SelfReflectionZh   string `json:"self_reflection_zh" form:"self_reflection_zh"`
}

// UnitDay is one day entry of a unit plan's contents.
type UnitDay struct {
	Day        int    `json:"day"`
	Focus      string `json:"focus"`
	Activities string `json:"activities"`
	Notes      string `json:"notes"`
}

type UnitForm struct {
	UnitTopic         string `json:"unit_topic" form:"unit_topic"`
	NumberOfLessons   string `json:"number_of_lessons" form:"number_of_lessons"`
	Period            string `json:"period" form:"period"`
	ClassInfo         string `json:"class_info" form:"class_info"`
	ClassSize         string `json:"class_size" form:"class_size"`
	Venue             string `json:"venue" form:"venue"`
	Equipment         string `json:"equipment" form:"equipment"`
	UnitOverview      string `json:"unit_overview" form:"unit_overview"`
	SkillsTopics      string `json:"skills_topics" form:"skills_topics"`
	MovementConcepts  string `json:"movement_concepts" form:"movement_concepts"`
	PreviousKnowledge string `json:"previous_knowledge" form:"previous_knowledge"`
	LearningOutcomes  string `json:"learning_outcomes" form:"learning_outcomes"`
	Assessments       string `json:"assessments" form:"assessments"`

	PsychomotorObj   string `json:"psychomotor_obj" form:"psychomotor_obj"`
	CognitiveObj     string `json:"cognitive_obj" form:"cognitive_obj"`
	AffectiveObj     string `json:"affective_obj" form:"affective_obj"`
	PsychomotorChars string `json:"psychomotor_chars" form:"psychomotor_chars"`
	CognitiveChars   string `json:"cognitive_chars" form:"cognitive_chars"`
	AffectiveChars   string `json:"affective_chars" form:"affective_chars"`
	PsychomotorNotes string `json:"psychomotor_notes" form:"psychomotor_notes"`
	CognitiveNotes   string `json:"cognitive_notes" form:"cognitive_notes"`
	AffectiveNotes   string `json:"affective_notes" form:"affective_notes"`

	IndividualDifferences string    `json:"individual_differences" form:"individual_differences"`
	EnhancingMotivation   string    `json:"enhancing_motivation" form:"enhancing_motivation"`
	SafetyPrecautions     string    `json:"safety_precautions" form:"safety_precautions"`
	UnitContents          []UnitDay `json:"unit_contents" form:"-"`
	OtherConsiderations   string    `json:"other_considerations" form:"other_considerations"`

	// Chinese fields
	UnitTopicZh string `json:"unit_topic_zh" form:"unit_topic_zh"`
	VenueZh     string `json:"venue_zh" form:"venue_zh"`
	EquipmentZh string `json:"equipment_zh" form:"equipment_zh"`
}

func (f *LessonForm) Validate() error { return core.Validate.Struct(f) }

func (f *UnitForm) Validate() error {
	if f.UnitContents == nil {
		f.UnitContents = []UnitDay{}
	}
	return core.Validate.Struct(f)
}

// Document serializes the form into the opaque plan document.
func (f *LessonForm) Document() (json.RawMessage, error) { return json.Marshal(f) }

func (f *UnitForm) Document() (json.RawMessage, error) {
	if f.UnitContents == nil {
		f.UnitContents = []UnitDay{}
	}
	return json.Marshal(f)
}

// DefaultLessonForm returns the prefilled lesson form shown on the create
// page.
func DefaultLessonForm(now time.Time) LessonForm {
	tomorrow := now.AddDate(0, 0, 1).Format("02/01/2006")
	return LessonForm{
		TeacherName:     "John Smith",
		PeshYear:        "2",
		Date:            tomorrow,
		ClassDuration:   "40",
		StartTime:       "09:00",
		EndTime:         "09:40",
		SchoolName:      "CUHK FED School",
		Year:            "5",
		ClassID:         "A",
		ClassLevel:      "Primary",
		ClassSize:       "30",
		Boys:            "15",
		Girls:           "15",
		Topic:           "Basketball Fundamentals",
		UnitDuration:    "5",
		DayOfUnit:       "1",
		LessonTheme:     "Basic Dribbling Techniques",
		AbilityLevel:    "50",
		PsychomotorObjs: "Students will be able to perform basic dribbling with 70% accuracy",
		CognitiveObjs:   "Students will understand the basic rules of dribbling",
		AffectiveObjs:   "Students will demonstrate cooperation during group activities",
		Venue:           "School Sports Hall",
		Equipment:       "Basketballs, cones, whistles",
		SafetyConcerns:  "Ensure proper spacing between students",
		IntroTime:       "5",
		IntroCues:       "Focus on ball control",
		IntroEquipment:  "1 ball per student",
		SDTime:          "20",
		SDCues:          "Keep eyes up while dribbling",
		SDEquipment:     "Cones for dribbling course",
		AppliTime:       "10",
		AppliCues:       "Apply skills in game situation",
		AppliEquipment:  "Small-sided game equipment",
		CATime:          "5",
		CACues:          "Cool down and review key points",
		CAEquipment:     "None",
		FollowupActions: "Practice stationary dribbling at home",
		SelfReflection:  "Students responded well to visual demonstrations",

		TeacherNameZh:     "張老師",
		SchoolNameZh:      "香港中文大學附屬學校",
		ClassIDZh:         "甲班",
		ClassLevelZh:      "小學",
		TopicZh:           "籃球基礎",
		LessonThemeZh:     "基本運球技巧",
		PsychomotorObjsZh: "學生能夠以70%的準確率完成基本運球",
		CognitiveObjsZh:   "學生將理解運球的基本規則",
		AffectiveObjsZh:   "學生在小組活動中展現合作精神",
		VenueZh:           "學校體育館",
		EquipmentZh:       "籃球、雪糕筒、哨子",
		SafetyConcernsZh:  "確保學生之間有適當距離",
		IntroCuesZh:       "專注於控球",
		IntroEquipmentZh:  "每位學生一個籃球",
		SDCuesZh:          "運球時保持抬頭",
		SDEquipmentZh:     "運球路線用的雪糕筒",
		AppliCuesZh:       "在比賽情境中應用技能",
		AppliEquipmentZh:  "小型比賽設備",
		CACuesZh:          "放鬆活動及回顧重點",
		CAEquipmentZh:     "不需要",
		FollowupActionsZh: "在家練習原地運球",
		SelfReflectionZh:  "學生對視覺演示反應良好",
	}
}

// DefaultUnitForm returns the prefilled unit form shown on the create page.
func DefaultUnitForm(now time.Time) UnitForm {
	tomorrow := now.AddDate(0, 0, 1).Format("02/01/2006")
	monthOut := now.AddDate(0, 0, 30).Format("02/01/2006")
	return UnitForm{
		UnitTopic:       "Basketball Fundamentals Unit",
		NumberOfLessons: "5",
		Period:          fmt.Sprintf("%s to %s", tomorrow, monthOut),
		ClassInfo:       "5A",
		ClassSize:       "30",
		Venue:           "School Sports Hall",
		Equipment:       "Basketballs, cones, whistles, bibs",
		UnitTopicZh:     "籃球基礎單元",
		UnitContents:    []UnitDay{},
	}
}
